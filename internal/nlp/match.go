package nlp

import (
	"regexp"
	"strings"
)

// Normalize lower-cases, trims, collapses internal whitespace and strips
// punctuation noise. Apostrophes and quotes survive: possessives and
// quoted task names carry meaning downstream.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Trim(s, "?!.,:; ")
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Join(strings.Fields(s), " ")
}

// reservedWords are tokens that can never be a person name. A capture
// hitting one of these means the pattern matched filler, not a subject,
// and the rule is skipped so later groups get a chance.
var reservedWords = map[string]bool{
	"me": true, "my": true, "i": true, "mine": true, "our": true, "your": true,
	"the": true, "a": true, "an": true, "all": true, "any": true, "some": true,
	"show": true, "list": true, "get": true, "display": true, "view": true,
	"what": true, "whats": true, "who": true, "is": true, "are": true,
	"due": true, "overdue": true, "today": true, "tomorrow": true,
	"week": true, "this": true, "next": true, "now": true,
	"urgent": true, "asap": true, "high": true, "low": true, "normal": true,
	"priority": true, "important": true,
	"open": true, "closed": true, "done": true, "pending": true, "active": true,
	"team": true, "teams": true, "task": true, "tasks": true,
	"everyone": true, "detailed": true, "full": true, "more": true, "new": true,
}

type rule struct {
	intent  Intent
	re      *regexp.Regexp
	capture int // regex group index of a candidate name/title, 0 = none
	isName  bool
}

// ruleGroups is an ordered priority list: the first matching rule wins.
// Identity queries come before team queries before user-task queries
// before the task-listing catch-all; ordering is the only tie-break.
var ruleGroups = []rule{
	// Identity
	{intent: IntentWhoAmI, re: regexp.MustCompile(`\bwho am i\b`)},
	{intent: IntentWhoAmI, re: regexp.MustCompile(`\b(show|what is) my (profile|info|account)\b`)},

	// Teams and workspaces
	{intent: IntentListTeams, re: regexp.MustCompile(`\b(show|list|what are|display) .*\b(teams|workspaces)\b`)},
	{intent: IntentListTeams, re: regexp.MustCompile(`\bmy (teams|workspaces)\b`)},

	// Summaries and counts
	{intent: IntentSummary, re: regexp.MustCompile(`\b(summary|summarize|overview)\b`)},
	{intent: IntentSummary, re: regexp.MustCompile(`\bhow many tasks\b`)},
	{intent: IntentSummary, re: regexp.MustCompile(`\btask (count|stats|statistics)\b`)},

	// Task creation
	{intent: IntentCreateTask, re: regexp.MustCompile(`\b(?:create|add|make|new) .*task.* ["']([^"']+)["']`), capture: 1},
	{intent: IntentCreateTask, re: regexp.MustCompile(`\bremind me to (.+)$`), capture: 1},
	{intent: IntentCreateTask, re: regexp.MustCompile(`\badd ["']([^"']+)["']`), capture: 1},

	// Task updates
	{intent: IntentUpdateTask, re: regexp.MustCompile(`\b(?:mark|set|update) .*\b(?:done|complete|finished)\b`)},
	{intent: IntentUpdateTask, re: regexp.MustCompile(`\b(?:close|finish|complete) (?:the )?task\b`)},

	// Detailed views with comments
	{intent: IntentDetailTasks, re: regexp.MustCompile(`\b(detailed|full) tasks?\b`)},
	{intent: IntentDetailTasks, re: regexp.MustCompile(`\btasks? with comments\b`)},
	{intent: IntentDetailTasks, re: regexp.MustCompile(`\btask details\b`)},

	// Guidance, ahead of the listing catch-alls so "help me with my
	// tasks" still reads as a help request.
	{intent: IntentHelp, re: regexp.MustCompile(`\bhelp\b`)},
	{intent: IntentHelp, re: regexp.MustCompile(`\bwhat can you do\b`)},
	{intent: IntentHelp, re: regexp.MustCompile(`\bexamples?\b`)},

	// Another user's tasks. Captures are rejected when reserved, so
	// "show my tasks" and "list urgent tasks" fall through to the
	// catch-all below.
	{intent: IntentUserTasks, re: regexp.MustCompile(`\btasks? (?:for|of|assigned to) (\w+)\b`), capture: 1, isName: true},
	{intent: IntentUserTasks, re: regexp.MustCompile(`\bwhat(?:'s| is)? (\w+) working on\b`), capture: 1, isName: true},
	{intent: IntentUserTasks, re: regexp.MustCompile(`\b(\w+)'s tasks\b`), capture: 1, isName: true},
	{intent: IntentUserTasks, re: regexp.MustCompile(`\b(\w+) tasks\b`), capture: 1, isName: true},

	// Task listing catch-all
	{intent: IntentListTasks, re: regexp.MustCompile(`\b(show|list|get|display|view|what are) .*\btasks?\b`)},
	{intent: IntentListTasks, re: regexp.MustCompile(`\btasks?\b`)},
	{intent: IntentListTasks, re: regexp.MustCompile(`\b(due|overdue|deadline)\b`)},
	{intent: IntentListTasks, re: regexp.MustCompile(`\b(urgent|asap|priority|important) (items|work|things|stuff)\b`)},
	{intent: IntentListTasks, re: regexp.MustCompile(`\bwhat (do i have|should i|need to|am i)\b`)},
}

type match struct {
	intent  Intent
	capture string
}

// matchIntent scans the ordered rule list over normalized text and
// returns the first hit. No scoring: determinism comes from rule order.
func matchIntent(text string) match {
	for _, r := range ruleGroups {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		captured := ""
		if r.capture > 0 && r.capture < len(m) {
			captured = cleanCapture(m[r.capture])
		}
		if r.isName {
			if captured == "" || reservedWords[captured] {
				continue
			}
		}
		return match{intent: r.intent, capture: captured}
	}
	return match{intent: IntentUnknown}
}

// cleanCapture strips possessive suffixes, quotes and trailing
// punctuation from a captured token.
func cleanCapture(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	s = strings.TrimSuffix(s, "'s")
	return strings.Trim(s, "?!.,:;")
}
