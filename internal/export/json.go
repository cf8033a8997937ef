package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/planline/internal/store"
)

func ToJSON(b *store.Board, path string) error {
	data, err := json.MarshalIndent(newDocument(b, time.Now()), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
