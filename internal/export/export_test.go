package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/planline/internal/store"
	"github.com/sadopc/planline/internal/timeline"
)

func ptr[T any](v T) *T { return &v }

func sampleBoard() *store.Board {
	start := timeline.Date(2025, time.January, 1)
	end := timeline.Date(2025, time.June, 30)
	return &store.Board{
		Project: store.Project{ID: "p1", Name: "Launch Plan", StartDate: &start, EndDate: &end},
		Rows: []timeline.Row{
			{ID: "r2", Name: "Frontend", Order: 2},
			{ID: "r1", Name: "Backend", Order: 1},
			{ID: "r1a", Name: "API", Order: 1, ParentID: ptr("r1")},
		},
		Milestones: []timeline.Milestone{
			{
				ID: "m1", RowID: ptr("r1a"), Name: "Beta",
				Start: timeline.Date(2025, time.March, 1), End: timeline.Date(2025, time.March, 10),
				Status: timeline.StatusInProgress, Color: "#2EC4B6",
			},
			{
				ID: "m2", RowID: ptr("r2"), Name: "Redesign",
				Start: timeline.Date(2025, time.February, 1), End: timeline.Date(2025, time.February, 1),
				Status: timeline.StatusPlanned,
			},
			{
				ID: "m3", Name: "Floating",
				Start: timeline.Date(2025, time.April, 1), End: timeline.Date(2025, time.April, 2),
				Status: timeline.StatusBlocked,
			},
		},
		Pinpoints: []timeline.Pinpoint{
			{ID: "pp1", RowID: "r1", Name: "Freeze", Date: timeline.Date(2025, time.May, 5), Description: "code freeze"},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// ============================================================
// Records
// ============================================================

func TestRecordsLaneOrder(t *testing.T) {
	rs := records(sampleBoard())
	if len(rs) != 4 {
		t.Fatalf("expected 4 records, got %d", len(rs))
	}
	want := []struct{ id, row string }{
		{"pp1", "Backend"},
		{"m1", "API"},
		{"m2", "Frontend"},
		{"m3", "Unassigned"},
	}
	for i, w := range want {
		if rs[i].ID != w.id || rs[i].Row != w.row {
			t.Fatalf("record %d = %s/%s, want %s/%s", i, rs[i].ID, rs[i].Row, w.id, w.row)
		}
	}
}

func TestRecordsNilBoard(t *testing.T) {
	if rs := records(nil); rs != nil {
		t.Fatalf("expected nil, got %d records", len(rs))
	}
}

func TestRecordsUnknownRowIsUnassigned(t *testing.T) {
	b := sampleBoard()
	b.Milestones[0].RowID = ptr("deleted")
	for _, r := range records(b) {
		if r.ID == "m1" && r.Row != "Unassigned" {
			t.Fatalf("milestone on unknown row should be unassigned, got %q", r.Row)
		}
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")
	if err := ToCSV(sampleBoard(), path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 5 {
		t.Fatalf("expected 5 rows (1 header + 4 data), got %d", len(records))
	}

	header := records[0]
	for i, h := range csvHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	beta := records[2]
	if beta[0] != "m1" || beta[1] != "milestone" || beta[2] != "API" {
		t.Fatalf("unexpected milestone row: %v", beta)
	}
	if beta[4] != "2025-03-01" || beta[5] != "2025-03-10" {
		t.Fatalf("dates = %s..%s", beta[4], beta[5])
	}
	if beta[6] != "10" {
		t.Fatalf("Days = %q, want 10", beta[6])
	}
	if beta[7] != "in_progress" {
		t.Fatalf("Status = %q", beta[7])
	}

	pin := records[1]
	if pin[1] != "pinpoint" || pin[5] != "" || pin[7] != "code freeze" {
		t.Fatalf("unexpected pinpoint row: %v", pin)
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	b := sampleBoard()
	b.Pinpoints[0].Name = `Freeze "hard"`
	b.Pinpoints[0].Description = `no merges, "really"`
	path := filepath.Join(t.TempDir(), "special.csv")
	if err := ToCSV(b, path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if records[1][3] != `Freeze "hard"` {
		t.Fatalf("name mangled: %q", records[1][3])
	}
	if records[1][7] != `no merges, "really"` {
		t.Fatalf("description mangled: %q", records[1][7])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")
	if err := ToJSON(sampleBoard(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result document
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Project != "Launch Plan" {
		t.Fatalf("project = %q", result.Project)
	}
	if result.Start != "2025-01-01" || result.End != "2025-06-30" {
		t.Fatalf("bound = %s..%s", result.Start, result.End)
	}
	if result.Count != 4 || len(result.Items) != 4 {
		t.Fatalf("count = %d, items = %d, want 4", result.Count, len(result.Items))
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	m := result.Items[1]
	if m.Name != "Beta" || m.Detail != "in_progress" || m.Days != 10 {
		t.Fatalf("unexpected item: %+v", m)
	}
	if result.Items[0].End != "" {
		t.Fatalf("pinpoint end should be empty, got %q", result.Items[0].End)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result document
	json.Unmarshal(data, &result)
	if result.Count != 0 || result.Items != nil {
		t.Fatalf("expected empty export, got %+v", result)
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(sampleBoard(), path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be indented")
	}
}

// ============================================================
// YAML
// ============================================================

func TestToYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := ToYAML(sampleBoard(), path); err != nil {
		t.Fatalf("ToYAML: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result document
	if err := yaml.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if result.Count != 4 || len(result.Items) != 4 {
		t.Fatalf("count = %d, items = %d, want 4", result.Count, len(result.Items))
	}
	if result.Items[3].Row != "Unassigned" || result.Items[3].Detail != "blocked" {
		t.Fatalf("unexpected last item: %+v", result.Items[3])
	}
	if !strings.Contains(string(data), "project: Launch Plan") {
		t.Fatalf("expected plain project key, got:\n%s", data)
	}
}

func TestToYAMLBadPath(t *testing.T) {
	if err := ToYAML(nil, "/nonexistent/dir/file.yaml"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"csv", FormatCSV, true},
		{".JSON", FormatJSON, true},
		{"yml", FormatYAML, true},
		{"yaml", FormatYAML, true},
		{"xml", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFormat(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestWriteDispatches(t *testing.T) {
	dir := t.TempDir()
	for _, f := range Formats {
		path := filepath.Join(dir, "out."+string(f))
		if err := Write(f, sampleBoard(), path); err != nil {
			t.Fatalf("Write(%s): %v", f, err)
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Fatalf("Write(%s) produced no file", f)
		}
	}
}

func TestFileName(t *testing.T) {
	now := time.Date(2025, time.March, 4, 5, 6, 7, 0, time.UTC)
	tests := []struct {
		project string
		want    string
	}{
		{"Launch Plan", "launch-plan_20250304_050607.csv"},
		{"  ", "planline_20250304_050607.csv"},
		{"Q3/Q4!", "q3-q4_20250304_050607.csv"},
	}
	for _, tt := range tests {
		if got := FileName(tt.project, FormatCSV, now); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.project, got, tt.want)
		}
	}
}
