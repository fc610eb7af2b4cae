package nlp

import (
	"testing"

	"cupilot/internal/clickup"
)

func TestExtractFilters(t *testing.T) {
	cases := []struct {
		in   string
		want FilterSpec
	}{
		{"show my tasks", FilterSpec{AssigneeMe: true}},
		{"what's due today", FilterSpec{Due: DueToday}},
		{"tasks due tomorrow", FilterSpec{Due: DueTomorrow}},
		{"what's due this week", FilterSpec{Due: DueThisWeek}},
		{"overdue tasks", FilterSpec{Due: DueOverdue}},
		{"list urgent tasks", FilterSpec{Priority: clickup.PriorityUrgent}},
		{"asap items", FilterSpec{Priority: clickup.PriorityUrgent}},
		{"high priority tasks", FilterSpec{Priority: clickup.PriorityHigh}},
		{"important things", FilterSpec{Priority: clickup.PriorityHigh}},
		{"low priority stuff", FilterSpec{Priority: clickup.PriorityLow}},
		{"tasks assigned to rolla", FilterSpec{AssigneeName: "rolla"}},
		{"my urgent tasks due today", FilterSpec{Due: DueToday, Priority: clickup.PriorityUrgent, AssigneeMe: true}},
		{"show tasks", FilterSpec{}},
	}
	for _, c := range cases {
		if got := ExtractFilters(Normalize(c.in)); got != c.want {
			t.Fatalf("ExtractFilters(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

// When several due phrases appear the narrower window wins.
func TestExtractFiltersDueSpecificity(t *testing.T) {
	f := ExtractFilters("due today this week")
	if f.Due != DueToday {
		t.Fatalf("Due = %s, want %s", f.Due, DueToday)
	}
}

// A bare "priority" with no level is too ambiguous to constrain on.
func TestExtractFiltersBarePriority(t *testing.T) {
	f := ExtractFilters("show priority tasks")
	if f.Priority != clickup.PriorityNone {
		t.Fatalf("Priority = %s, want none", f.Priority)
	}
}

func TestInterpret(t *testing.T) {
	cases := []struct {
		in   string
		want Command
	}{
		{
			"Show my urgent tasks",
			Command{Intent: IntentListTasks, Filters: FilterSpec{AssigneeMe: true, Priority: clickup.PriorityUrgent}},
		},
		{
			"What is Jeremy working on?",
			Command{Intent: IntentUserTasks, Subject: "jeremy"},
		},
		{
			"What's due this week?",
			Command{Intent: IntentListTasks, Filters: FilterSpec{Due: DueThisWeek}},
		},
		{
			"remind me to send the invoice",
			Command{Intent: IntentCreateTask, TaskName: "send the invoice"},
		},
		{
			"who am I?",
			Command{Intent: IntentWhoAmI},
		},
		{
			"make me a sandwich",
			Command{Intent: IntentUnknown},
		},
		{
			"",
			Command{Intent: IntentUnknown},
		},
	}
	for _, c := range cases {
		if got := Interpret(c.in); got != c.want {
			t.Fatalf("Interpret(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

// The explicit subject of a user-tasks utterance overrides incidental
// assignee mentions the extractor would otherwise pick up.
func TestInterpretSubjectPrecedence(t *testing.T) {
	cmd := Interpret("show tasks for jeremy")
	if cmd.Intent != IntentUserTasks || cmd.Subject != "jeremy" {
		t.Fatalf("got %+v", cmd)
	}
	if cmd.Filters.AssigneeMe || cmd.Filters.AssigneeName != "" {
		t.Fatalf("assignee filters should be cleared, got %+v", cmd.Filters)
	}
}

// An unrecognized utterance carries no filters even when modifier words
// are present.
func TestInterpretUnknownCarriesNothing(t *testing.T) {
	cmd := Interpret("urgent sandwich today")
	if cmd.Intent != IntentUnknown {
		t.Fatalf("intent = %s, want unknown", cmd.Intent)
	}
	if !cmd.Filters.IsZero() {
		t.Fatalf("filters = %+v, want zero", cmd.Filters)
	}
}
