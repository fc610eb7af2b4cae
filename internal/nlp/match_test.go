package nlp

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Show My Tasks!  ", "show my tasks"},
		{"What's due today?", "what's due today"},
		{"list,  urgent,tasks", "list urgent tasks"},
		{"???", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMatchIntent(t *testing.T) {
	cases := []struct {
		in      string
		intent  Intent
		capture string
	}{
		{"who am i", IntentWhoAmI, ""},
		{"show my teams", IntentListTeams, ""},
		{"list workspaces", IntentListTeams, ""},
		{"give me a summary", IntentSummary, ""},
		{"how many tasks do i have", IntentSummary, ""},
		{"create a task 'review pr #123'", IntentCreateTask, "review pr #123"},
		{"remind me to update the docs", IntentCreateTask, "update the docs"},
		{"mark the deploy task as done", IntentUpdateTask, ""},
		{"show tasks for jeremy", IntentUserTasks, "jeremy"},
		{"what is rolla working on", IntentUserTasks, "rolla"},
		{"jeremy's tasks", IntentUserTasks, "jeremy"},
		{"show detailed tasks", IntentDetailTasks, ""},
		{"view tasks with comments", IntentDetailTasks, ""},
		{"full tasks please", IntentDetailTasks, ""},
		{"show my tasks", IntentListTasks, ""},
		{"list urgent tasks", IntentListTasks, ""},
		{"what's due this week", IntentListTasks, ""},
		{"anything overdue", IntentListTasks, ""},
		{"what do i have on my plate", IntentListTasks, ""},
		{"help", IntentHelp, ""},
		{"what can you do", IntentHelp, ""},
		{"turn the lights off", IntentUnknown, ""},
	}
	for _, c := range cases {
		m := matchIntent(Normalize(c.in))
		if m.intent != c.intent {
			t.Fatalf("matchIntent(%q) intent = %s, want %s", c.in, m.intent, c.intent)
		}
		if m.capture != c.capture {
			t.Fatalf("matchIntent(%q) capture = %q, want %q", c.in, m.capture, c.capture)
		}
	}
}

// Reserved tokens must never be mistaken for a person name; the
// user-tasks patterns have to fall through to the listing catch-all.
func TestReservedWordsAreNotNames(t *testing.T) {
	for _, in := range []string{
		"show my tasks",
		"my tasks",
		"urgent tasks",
		"overdue tasks",
		"all tasks",
		"list the open tasks",
	} {
		m := matchIntent(Normalize(in))
		if m.intent == IntentUserTasks {
			t.Fatalf("matchIntent(%q) classified as user-tasks with capture %q", in, m.capture)
		}
	}
}

// When an utterance satisfies two rule groups, the earlier-declared
// group wins. Pins the priority list.
func TestRuleOrderPriority(t *testing.T) {
	cases := []struct {
		in   string
		want Intent
	}{
		// Identity beats the task-listing catch-all.
		{"who am i and what are my tasks", IntentWhoAmI},
		// Teams beat task listing.
		{"show teams and their tasks", IntentListTeams},
		// Summary beats user-tasks.
		{"summary of jeremy's tasks", IntentSummary},
		// User-tasks beat the listing catch-all.
		{"show tasks for jeremy today", IntentUserTasks},
		// Help beats the listing catch-all.
		{"help me with my tasks", IntentHelp},
		// Detail beats the listing catch-all.
		{"show detailed tasks due today", IntentDetailTasks},
	}
	for _, c := range cases {
		if got := matchIntent(Normalize(c.in)).intent; got != c.want {
			t.Fatalf("matchIntent(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestCleanCapture(t *testing.T) {
	cases := []struct{ in, want string }{
		{`"review pr"`, "review pr"},
		{"jeremy's", "jeremy"},
		{" rolla? ", "rolla"},
	}
	for _, c := range cases {
		if got := cleanCapture(c.in); got != c.want {
			t.Fatalf("cleanCapture(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
