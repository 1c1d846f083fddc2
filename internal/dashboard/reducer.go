package dashboard

import (
	"time"

	"github.com/jaekwang-park/todo-client/internal/model"
)

// Reduce counts items against a single reference time so every overdue
// comparison in one pass agrees.
func Reduce(items []model.Todo, now time.Time) model.Summary {
	s := model.Summary{Total: len(items), ComputedAt: now}
	for _, t := range items {
		if t.Completed {
			s.Completed++
		}
		if t.IsDeleted() {
			s.Deleted++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	return s
}
