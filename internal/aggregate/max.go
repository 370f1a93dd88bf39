package aggregate

import "github.com/tgk/tipstream/internal/models"

// MaxSelector re-groups per-driver totals by their window end, one global
// group per window, and keeps the single record with the highest sum.
//
// The comparison is strictly greater-than: on a tie the record that arrived
// first wins, which makes repeated runs over the same arrival order
// reproducible.
//
// Like TipAccumulator it is driven from a single goroutine. It must only be
// closed for a window once every total for that window has been observed;
// the pipeline guarantees this by forwarding the upstream closure signal
// after the window's totals.
type MaxSelector struct {
	best map[int64]models.TipTotal
}

func NewMaxSelector() *MaxSelector {
	return &MaxSelector{best: make(map[int64]models.TipTotal)}
}

// Observe folds one per-driver total into its window's group.
func (s *MaxSelector) Observe(t models.TipTotal) {
	cur, ok := s.best[t.WindowEnd]
	if !ok || t.TipSum > cur.TipSum {
		s.best[t.WindowEnd] = t
	}
}

// Close finishes the group for windowEnd and returns its winner. The second
// return is false when the window held no totals at all, in which case
// nothing is emitted for it.
func (s *MaxSelector) Close(windowEnd int64) (models.TipTotal, bool) {
	winner, ok := s.best[windowEnd]
	if ok {
		delete(s.best, windowEnd)
	}
	return winner, ok
}
