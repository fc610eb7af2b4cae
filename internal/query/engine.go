package query

import (
	"sort"
	"time"

	"cupilot/internal/clickup"
	"cupilot/internal/nlp"
)

// Result is an ordered task subset plus the aggregate metadata the
// formatter consumes.
type Result struct {
	Tasks      []clickup.Task
	Total      int
	ByStatus   map[string]int
	ByPriority map[clickup.Priority]int
	Overdue    int
	DueSoon    int // due within the next 7 days
}

// Apply filters and orders tasks. Pure function: identical
// inputs always yield identical results, including ordering. Calendar
// arithmetic uses now's location so date classification follows the
// user's local day boundaries, not UTC instants.
func Apply(tasks []clickup.Task, f nlp.FilterSpec, assigneeID int, now time.Time) *Result {
	res := &Result{
		ByStatus:   map[string]int{},
		ByPriority: map[clickup.Priority]int{},
	}
	today := startOfDay(now)

	for _, t := range tasks {
		if assigneeID != 0 && !t.AssignedTo(assigneeID) {
			continue
		}
		if !matchDue(t, f.Due, today) {
			continue
		}
		if !matchPriority(t, f.Priority) {
			continue
		}
		res.Tasks = append(res.Tasks, t)
	}

	// Due date ascending, undated tasks after all dated ones, ties
	// broken by id so output is reproducible.
	sort.SliceStable(res.Tasks, func(i, j int) bool {
		di, dj := res.Tasks[i].DueDate, res.Tasks[j].DueDate
		switch {
		case di == nil && dj == nil:
			return res.Tasks[i].ID < res.Tasks[j].ID
		case di == nil:
			return false
		case dj == nil:
			return true
		case !di.Equal(*dj):
			return di.Before(*dj)
		default:
			return res.Tasks[i].ID < res.Tasks[j].ID
		}
	})

	res.Total = len(res.Tasks)
	weekEnd := today.AddDate(0, 0, 7)
	for _, t := range res.Tasks {
		res.ByStatus[t.Status]++
		if t.Priority != clickup.PriorityNone {
			res.ByPriority[t.Priority]++
		}
		if t.DueDate == nil {
			continue
		}
		due := startOfDay(t.DueDate.In(now.Location()))
		if due.Before(today) && !t.Terminal() {
			res.Overdue++
		} else if !due.Before(today) && due.Before(weekEnd) {
			res.DueSoon++
		}
	}
	return res
}

func matchDue(t clickup.Task, r nlp.DueRange, today time.Time) bool {
	if r == nlp.DueNone {
		return true
	}
	if t.DueDate == nil {
		return false
	}
	due := startOfDay(t.DueDate.In(today.Location()))
	switch r {
	case nlp.DueToday:
		return due.Equal(today)
	case nlp.DueTomorrow:
		return due.Equal(today.AddDate(0, 0, 1))
	case nlp.DueThisWeek:
		// Rolling window: today through six days out.
		return !due.Before(today) && due.Before(today.AddDate(0, 0, 7))
	case nlp.DueOverdue:
		// A finished task is never actionable-overdue.
		return due.Before(today) && !t.Terminal()
	default:
		return true
	}
}

// matchPriority is an equality match, except "high" also admits urgent:
// urgent implies high-or-above.
func matchPriority(t clickup.Task, p clickup.Priority) bool {
	switch p {
	case clickup.PriorityNone:
		return true
	case clickup.PriorityHigh:
		return t.Priority == clickup.PriorityHigh || t.Priority == clickup.PriorityUrgent
	default:
		return t.Priority == p
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
