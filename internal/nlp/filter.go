package nlp

import (
	"regexp"
	"strings"

	"cupilot/internal/clickup"
)

var (
	reUrgent       = regexp.MustCompile(`\b(urgent|asap)\b`)
	reHighPriority = regexp.MustCompile(`\b(high priority|important)\b`)
	reLowPriority  = regexp.MustCompile(`\blow priority\b`)
	reAssigneeMe   = regexp.MustCompile(`\b(my|me|i|mine)\b`)
	reAssigneeName = regexp.MustCompile(`\b(?:for|of|assigned to) (\w+)\b`)
)

// ExtractFilters scans normalized text for temporal, priority and
// identity modifiers, independent of intent. Absence of signal on a
// dimension is the common case and leaves it unconstrained.
func ExtractFilters(text string) FilterSpec {
	var f FilterSpec

	// Due range: when several phrases appear, the most specific window
	// wins (today > tomorrow > this week > overdue). A narrower window
	// is more informative in "due today this week".
	switch {
	case strings.Contains(text, "today"):
		f.Due = DueToday
	case strings.Contains(text, "tomorrow"):
		f.Due = DueTomorrow
	case strings.Contains(text, "this week"):
		f.Due = DueThisWeek
	case strings.Contains(text, "overdue"):
		f.Due = DueOverdue
	}

	// Priority. An unqualified "priority" alone is too ambiguous to
	// act on and leaves the dimension unset.
	switch {
	case reUrgent.MatchString(text):
		f.Priority = clickup.PriorityUrgent
	case reHighPriority.MatchString(text):
		f.Priority = clickup.PriorityHigh
	case reLowPriority.MatchString(text):
		f.Priority = clickup.PriorityLow
	}

	// Assignee: first-person tokens bind to the authenticated user; a
	// non-reserved name after for/of/assigned-to is a candidate to be
	// resolved against team members at dispatch time.
	if reAssigneeMe.MatchString(text) {
		f.AssigneeMe = true
	} else if m := reAssigneeName.FindStringSubmatch(text); m != nil {
		name := cleanCapture(m[1])
		if name != "" && !reservedWords[name] {
			f.AssigneeName = name
		}
	}

	return f
}

// Interpret turns one raw utterance into a Command: normalize, match
// intent, extract filters, then resolve conflicts. Single pass, no
// retained state.
func Interpret(raw string) Command {
	text := Normalize(raw)
	if text == "" {
		return Command{Intent: IntentUnknown}
	}

	m := matchIntent(text)
	if m.intent == IntentUnknown {
		// An unrecognized utterance never carries filters: the caller
		// renders a "didn't understand" response instead.
		return Command{Intent: IntentUnknown}
	}

	// Filters only constrain task queries; attaching them to identity
	// or creation intents would just echo noise back in error messages.
	cmd := Command{Intent: m.intent}
	switch m.intent {
	case IntentListTasks, IntentDetailTasks, IntentSummary:
		cmd.Filters = ExtractFilters(text)
	case IntentUserTasks:
		// The intent's explicit subject takes precedence over any
		// incidental assignee mention picked up by the extractor.
		cmd.Subject = m.capture
		cmd.Filters = ExtractFilters(text)
		cmd.Filters.AssigneeMe = false
		cmd.Filters.AssigneeName = ""
	case IntentCreateTask:
		cmd.TaskName = m.capture
	}
	return cmd
}
