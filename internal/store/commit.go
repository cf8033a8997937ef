package store

import (
	"fmt"

	"github.com/sadopc/planline/internal/timeline"
)

// Commit persists a command produced by the timeline controller.
func (s *Store) Commit(cmd timeline.PendingCommand) error {
	switch cmd.Kind {
	case timeline.KindMilestone:
		_, err := s.PatchMilestone(cmd.ItemID, cmd.Patch)
		return err
	case timeline.KindPinpoint:
		_, err := s.PatchPinpoint(cmd.ItemID, cmd.Patch)
		return err
	case timeline.KindRow:
		if cmd.Patch.Order == nil {
			return nil
		}
		return s.PatchRowOrder(cmd.ItemID, *cmd.Patch.Order)
	}
	return fmt.Errorf("commit: unknown kind %q", cmd.Kind)
}

var _ timeline.Committer = (*Store)(nil)
