package export

import (
	"strings"
	"time"

	"github.com/sadopc/planline/internal/store"
	"github.com/sadopc/planline/internal/timeline"
)

const dateLayout = "2006-01-02"

// record is one exported schedule line. Pinpoints leave End empty and carry
// their description in Detail; milestones carry their status.
type record struct {
	ID     string `json:"id" yaml:"id"`
	Kind   string `json:"kind" yaml:"kind"`
	Row    string `json:"row" yaml:"row"`
	Name   string `json:"name" yaml:"name"`
	Start  string `json:"start" yaml:"start"`
	End    string `json:"end,omitempty" yaml:"end,omitempty"`
	Days   int    `json:"days" yaml:"days"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty"`
}

// document is the JSON and YAML envelope.
type document struct {
	ExportedAt string   `json:"exported_at" yaml:"exported_at"`
	Project    string   `json:"project" yaml:"project"`
	Start      string   `json:"start" yaml:"start"`
	End        string   `json:"end" yaml:"end"`
	Count      int      `json:"count" yaml:"count"`
	Items      []record `json:"items" yaml:"items"`
}

// records flattens the board in lane order: grouped rows first, then the
// unassigned bucket. Within a lane milestones come before pinpoints, each
// sorted by date.
func records(b *store.Board) []record {
	if b == nil {
		return nil
	}
	lanes := timeline.Lanes(timeline.GroupRows(b.Rows))
	milestones := timeline.IndexMilestones(b.Milestones, b.Rows)
	pinpoints := timeline.IndexPinpoints(b.Pinpoints, b.Rows)

	var out []record
	for _, lane := range lanes {
		for _, m := range milestones.ForRow(lane.ID) {
			out = append(out, milestoneRecord(m, lane.Name))
		}
		for _, p := range pinpoints.ForRow(lane.ID) {
			out = append(out, pinpointRecord(p, lane.Name))
		}
	}
	for _, m := range milestones.Unassigned() {
		out = append(out, milestoneRecord(m, "Unassigned"))
	}
	for _, p := range pinpoints.Unassigned() {
		out = append(out, pinpointRecord(p, "Unassigned"))
	}
	return out
}

func milestoneRecord(m timeline.Milestone, row string) record {
	return record{
		ID:     m.ID,
		Kind:   string(timeline.KindMilestone),
		Row:    row,
		Name:   m.Name,
		Start:  m.Start.Format(dateLayout),
		End:    m.End.Format(dateLayout),
		Days:   m.Days(),
		Detail: string(m.Status),
		Color:  m.Color,
	}
}

func pinpointRecord(p timeline.Pinpoint, row string) record {
	return record{
		ID:     p.ID,
		Kind:   string(timeline.KindPinpoint),
		Row:    row,
		Name:   p.Name,
		Start:  p.Date.Format(dateLayout),
		Days:   1,
		Detail: p.Description,
		Color:  p.Color,
	}
}

func newDocument(b *store.Board, now time.Time) document {
	doc := document{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Items:      records(b),
	}
	doc.Count = len(doc.Items)
	if b != nil {
		bound := b.Project.Bound(now)
		doc.Project = b.Project.Name
		doc.Start = bound.Start.Format(dateLayout)
		doc.End = bound.End.Format(dateLayout)
	}
	return doc
}

// Format names a supported export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the encodings in picker order.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML}

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FormatCSV, true
	case "json":
		return FormatJSON, true
	case "yaml", "yml":
		return FormatYAML, true
	}
	return "", false
}

// Write exports b to path in the given format.
func Write(f Format, b *store.Board, path string) error {
	switch f {
	case FormatJSON:
		return ToJSON(b, path)
	case FormatYAML:
		return ToYAML(b, path)
	default:
		return ToCSV(b, path)
	}
}

// FileName is the default export file name for a project.
func FileName(project string, f Format, now time.Time) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, strings.TrimSpace(project))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "planline"
	}
	return slug + "_" + now.Format("20060102_150405") + "." + string(f)
}
