// Package render turns query results into terminal text. Two modes:
// table for detailed views, summary for chat-style responses.
package render

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"cupilot/internal/clickup"
	"cupilot/internal/query"
)

type Mode string

const (
	ModeTable   Mode = "table"
	ModeSummary Mode = "summary"
	ModeDetail  Mode = "detail"
)

const nameWidth = 40

// Tasks renders a result in the requested mode. An empty result always
// yields an explicit message, never blank output.
func Tasks(res *query.Result, mode Mode, now time.Time) string {
	if res == nil || res.Total == 0 {
		return "No matching tasks."
	}
	switch mode {
	case ModeSummary:
		return summary(res)
	case ModeDetail:
		return detail(res, now)
	default:
		return table(res, now)
	}
}

func table(res *query.Result, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d task(s):\n\n", res.Total))
	w := tabwriter.NewWriter(&sb, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTASK\tSTATUS\tPRI\tDUE\tASSIGNEE")
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, t := range res.Tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			truncate(taskName(t.Name), nameWidth),
			statusLabel(t.Status),
			priorityMarker(t.Priority),
			dueLabel(t, today),
			assigneeLabel(t.Assignees),
		)
	}
	_ = w.Flush()
	return sb.String()
}

const commentPreviewWidth = 60

// detail renders one block per task with its latest comments.
func detail(res *query.Result, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d task(s):\n", res.Total))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, t := range res.Tasks {
		sb.WriteString(fmt.Sprintf("\n[%s] %s\n", t.ID, taskName(t.Name)))
		sb.WriteString(fmt.Sprintf("    Status: %s  Priority: %s  Due: %s\n",
			statusLabel(t.Status), priorityMarker(t.Priority), dueLabel(t, today)))
		if len(t.Assignees) > 0 {
			sb.WriteString("    Assignee: " + assigneeLabel(t.Assignees) + "\n")
		}
		if t.ListName != "" {
			sb.WriteString("    List: " + t.ListName + "\n")
		}
		if len(t.Comments) == 0 {
			sb.WriteString("    Comments: none\n")
			continue
		}
		sb.WriteString(fmt.Sprintf("    Comments (%d):\n", len(t.Comments)))
		for i, cm := range t.Comments {
			if i == 2 {
				sb.WriteString(fmt.Sprintf("      … and %d more\n", len(t.Comments)-i))
				break
			}
			user := cm.User
			if user == "" {
				user = "someone"
			}
			sb.WriteString(fmt.Sprintf("      - %s: %s\n", user, truncate(strings.TrimSpace(cm.Text), commentPreviewWidth)))
		}
	}
	return sb.String()
}

func summary(res *query.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d task(s)", res.Total))
	if res.Overdue > 0 {
		sb.WriteString(fmt.Sprintf(", %d overdue", res.Overdue))
	}
	if res.DueSoon > 0 {
		sb.WriteString(fmt.Sprintf(", %d due this week", res.DueSoon))
	}
	sb.WriteString(".\n")

	if len(res.ByStatus) > 0 {
		sb.WriteString("  By status: " + countLine(res.ByStatus) + "\n")
	}
	if len(res.ByPriority) > 0 {
		counts := map[string]int{}
		for p, n := range res.ByPriority {
			counts[string(p)] = n
		}
		sb.WriteString("  By priority: " + countLine(counts) + "\n")
	}
	return sb.String()
}

// countLine renders "k1 n1, k2 n2" with counts descending, names
// ascending on ties, so summaries are stable.
func countLine(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}

// WhoAmI renders the authenticated user line.
func WhoAmI(u clickup.User) string {
	return fmt.Sprintf("Authenticated as: %s\n  Email: %s\n", u.Username, u.Email)
}

// Teams renders the workspace list.
func Teams(teams []clickup.Team) string {
	if len(teams) == 0 {
		return "No teams found."
	}
	var sb strings.Builder
	sb.WriteString("Your teams:\n")
	for _, t := range teams {
		sb.WriteString(fmt.Sprintf("  - %s (id %s, %d members)\n", t.Name, t.ID, len(t.Members)))
	}
	return sb.String()
}

// Created renders a successful task creation.
func Created(t clickup.Task) string {
	return fmt.Sprintf("Created task %s: %s\n", t.ID, t.Name)
}

func taskName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "(unnamed)"
	}
	return name
}

func statusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return "-"
	}
	return status
}

// priorityMarker flags urgent and high visually, the rest by abbrev.
func priorityMarker(p clickup.Priority) string {
	switch p {
	case clickup.PriorityUrgent:
		return "U!"
	case clickup.PriorityHigh:
		return "H!"
	default:
		return p.Abbrev()
	}
}

// dueLabel formats the due date, marking overdue open tasks distinctly.
func dueLabel(t clickup.Task, today time.Time) string {
	if t.DueDate == nil {
		return "-"
	}
	due := t.DueDate.In(today.Location())
	label := due.Format("2006-01-02")
	day := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, today.Location())
	if day.Before(today) && !t.Terminal() {
		return label + " (overdue)"
	}
	return label
}

func assigneeLabel(users []clickup.User) string {
	if len(users) == 0 {
		return "-"
	}
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return strings.Join(names, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// Help is the guidance shown for help requests and unrecognized input.
const Help = `I understand natural language commands for your ClickUp tasks.

Things you can say:
  Viewing:     "show my tasks", "what's due today?", "show overdue tasks"
  Details:     "show detailed tasks", "view tasks with comments"
  Other users: "show jeremy's tasks", "what is rolla working on?"
  Priorities:  "list urgent tasks", "what are the high priority items?"
  Summaries:   "give me a task summary", "how many tasks do I have?"
  Teams:       "show teams", "who am i?"
  Creating:    "create task 'Review PR #123'", "remind me to update docs"

Type 'quit' or 'exit' to leave interactive mode.
`
