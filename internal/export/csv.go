package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/planline/internal/store"
)

var csvHeader = []string{"ID", "Kind", "Row", "Name", "Start", "End", "Days", "Status / Description"}

func ToCSV(b *store.Board, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range records(b) {
		row := []string{
			r.ID,
			r.Kind,
			r.Row,
			r.Name,
			r.Start,
			r.End,
			strconv.Itoa(r.Days),
			r.Detail,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
