package nlp

import (
	"strings"

	"cupilot/internal/clickup"
)

// Intent is the closed classification of what an utterance asks for.
type Intent string

const (
	IntentUnknown     Intent = "unknown"
	IntentWhoAmI      Intent = "whoami"
	IntentListTeams   Intent = "list-teams"
	IntentListTasks   Intent = "list-tasks"
	IntentDetailTasks Intent = "detail-tasks"
	IntentUserTasks   Intent = "user-tasks"
	IntentCreateTask  Intent = "create-task"
	IntentUpdateTask  Intent = "update-task"
	IntentSummary     Intent = "summary"
	IntentHelp        Intent = "help"
)

// DueRange is a symbolic due-date window, resolved against a concrete
// clock only inside the filter engine.
type DueRange string

const (
	DueNone     DueRange = ""
	DueToday    DueRange = "today"
	DueTomorrow DueRange = "tomorrow"
	DueThisWeek DueRange = "this-week"
	DueOverdue  DueRange = "overdue"
)

// FilterSpec is the set of independent optional predicates extracted
// from an utterance. Zero values mean "no constraint"; set fields
// combine with logical AND.
type FilterSpec struct {
	Due          DueRange
	Priority     clickup.Priority
	AssigneeMe   bool
	AssigneeName string
}

func (f FilterSpec) IsZero() bool {
	return f == FilterSpec{}
}

func (f FilterSpec) String() string {
	var parts []string
	if f.Due != DueNone {
		parts = append(parts, "due "+string(f.Due))
	}
	if f.Priority != clickup.PriorityNone {
		parts = append(parts, "priority "+string(f.Priority))
	}
	if f.AssigneeMe {
		parts = append(parts, "assignee me")
	} else if f.AssigneeName != "" {
		parts = append(parts, "assignee "+f.AssigneeName)
	}
	if len(parts) == 0 {
		return "no filters"
	}
	return strings.Join(parts, ", ")
}

// Command is the fully resolved instruction handed to dispatch.
type Command struct {
	Intent   Intent
	Subject  string // person name for user-tasks
	TaskName string // title for create-task
	Filters  FilterSpec
}

// String renders the interpreted command for user-visible messages, so
// a failed query always shows what was understood.
func (c Command) String() string {
	var b strings.Builder
	b.WriteString(string(c.Intent))
	if c.Subject != "" {
		b.WriteString("(" + c.Subject + ")")
	} else if c.TaskName != "" {
		b.WriteString("(" + c.TaskName + ")")
	}
	b.WriteString(" [" + c.Filters.String() + "]")
	return b.String()
}
