package store

import (
	"context"
	"time"

	"github.com/loykin/catalogup/internal/engine"
)

// HistoryObserver writes every completed catalog phase to upgrade_history.
// Write failures are logged and never abort the run.
type HistoryObserver struct {
	store   *Store
	timeout time.Duration
}

func NewHistoryObserver(s *Store) *HistoryObserver {
	return &HistoryObserver{store: s, timeout: 10 * time.Second}
}

func (h *HistoryObserver) StateChanged(runID string, from, to engine.State) {
	h.store.logger.WithRun(runID).Debug("upgrade state changed", "from", from.String(), "to", to.String())
}

func (h *HistoryObserver) PhaseCompleted(runID string, step engine.Step) {
	rec := RunRecord{
		RunID:    runID,
		Version:  step.Version,
		Phase:    string(step.Phase),
		Affected: step.Affected,
		Failed:   step.Err != nil,
	}
	if step.Err != nil {
		rec.Error = step.Err.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	if err := h.store.RecordRun(ctx, rec); err != nil {
		h.store.logger.WithRun(runID).Warn("failed to record upgrade history", "error", err, "version", step.Version, "phase", rec.Phase)
	}
}

var _ engine.Observer = (*HistoryObserver)(nil)
var _ engine.VersionStore = (*Store)(nil)
