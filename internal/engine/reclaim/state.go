package reclaim

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/zerr"
)

// state is the bookkeeping file kept next to the installed files.
type state struct {
	LastReclaim time.Time `json:"last_reclaim"`
}

func (r *Reclaimer) statePath() string {
	return filepath.Join(r.installDir, domain.StateFileName)
}

// lastReclaim returns the time of the previous sweep. A missing or
// unreadable state file means there was none.
func (r *Reclaimer) lastReclaim() (time.Time, bool) {
	data, err := os.ReadFile(r.statePath())
	if err != nil {
		return time.Time{}, false
	}
	var s state
	if err := json.Unmarshal(data, &s); err != nil || s.LastReclaim.IsZero() {
		return time.Time{}, false
	}
	return s.LastReclaim, true
}

func (r *Reclaimer) writeState(at time.Time) error {
	data, err := json.Marshal(state{LastReclaim: at.UTC()})
	if err != nil {
		return zerr.Wrap(err, "failed to encode reclaim state")
	}
	if err := os.MkdirAll(r.installDir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create install directory")
	}
	if err := os.WriteFile(r.statePath(), data, domain.PrivateFilePerm); err != nil {
		return zerr.Wrap(err, "failed to write reclaim state")
	}
	return nil
}
