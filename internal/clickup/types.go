package clickup

import (
	"strings"
	"time"
)

// Priority is the task priority level as ClickUp models it.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// priorityFromWire maps the ClickUp numeric priority (1=urgent .. 4=low).
func priorityFromWire(n int) Priority {
	switch n {
	case 1:
		return PriorityUrgent
	case 2:
		return PriorityHigh
	case 3:
		return PriorityNormal
	case 4:
		return PriorityLow
	default:
		return PriorityNone
	}
}

// WireValue returns the ClickUp numeric priority, or 0 for none.
func (p Priority) WireValue() int {
	switch p {
	case PriorityUrgent:
		return 1
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 3
	case PriorityLow:
		return 4
	default:
		return 0
	}
}

func (p Priority) Abbrev() string {
	switch p {
	case PriorityUrgent:
		return "U"
	case PriorityHigh:
		return "H"
	case PriorityNormal:
		return "N"
	case PriorityLow:
		return "L"
	default:
		return "-"
	}
}

// NormalizePriority folds common aliases onto the canonical levels.
func NormalizePriority(s string) Priority {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "low", "l":
		return PriorityLow
	case "normal", "n", "med", "medium":
		return PriorityNormal
	case "high", "h":
		return PriorityHigh
	case "urgent", "u", "asap", "p0":
		return PriorityUrgent
	default:
		return PriorityNone
	}
}

// User is a ClickUp account as seen through team membership.
type User struct {
	ID       int
	Username string
	Email    string
	Initials string
}

// Team is a ClickUp workspace.
type Team struct {
	ID      string
	Name    string
	Members []User
}

// Comment is one task comment, newest first as the API returns them.
type Comment struct {
	ID   string
	Text string
	User string
}

// Task is a read-only snapshot of a ClickUp task. The service owns the
// record; this program never mutates a Task in place.
type Task struct {
	ID          string
	Name        string
	Description string
	Status      string
	StatusType  string
	Priority    Priority
	DueDate     *time.Time
	Assignees   []User
	ParentID    string
	SubtaskIDs  []string
	Comments    []Comment
	ListName    string
}

// Terminal reports whether the task is in a closed/complete state.
// ClickUp marks these with status type "done" or "closed"; the status
// text is checked as a fallback for workspaces with custom statuses.
func (t Task) Terminal() bool {
	switch strings.ToLower(t.StatusType) {
	case "done", "closed":
		return true
	}
	switch strings.ToLower(strings.TrimSpace(t.Status)) {
	case "complete", "completed", "done", "closed":
		return true
	}
	return false
}

// AssignedTo reports whether the task is assigned to the given user id.
func (t Task) AssignedTo(userID int) bool {
	for _, u := range t.Assignees {
		if u.ID == userID {
			return true
		}
	}
	return false
}
