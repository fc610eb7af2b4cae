package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"cupilot/internal/clickup"
	"cupilot/internal/query"
)

type stubClient struct {
	me      clickup.User
	meCalls int
	teams   []clickup.Team
	tasks   []clickup.Task
}

func (s *stubClient) AuthenticatedUser(ctx context.Context) (clickup.User, error) {
	s.meCalls++
	return s.me, nil
}

func (s *stubClient) Teams(ctx context.Context) ([]clickup.Team, error) {
	return s.teams, nil
}

func (s *stubClient) TeamTasks(ctx context.Context, teamID string, q clickup.TaskQuery) ([]clickup.Task, error) {
	return s.tasks, nil
}

func (s *stubClient) ListTasks(ctx context.Context, listID string, q clickup.TaskQuery) ([]clickup.Task, error) {
	return s.tasks, nil
}

func (s *stubClient) TaskComments(ctx context.Context, taskID string) ([]clickup.Comment, error) {
	return []clickup.Comment{{ID: "c1", Text: "waiting on figures", User: "rolla"}}, nil
}

func (s *stubClient) CreateTask(ctx context.Context, listID string, in clickup.CreateTaskInput) (clickup.Task, error) {
	return clickup.Task{ID: "new1", Name: in.Name}, nil
}

func (s *stubClient) UpdateTask(ctx context.Context, taskID string, in clickup.UpdateTaskInput) (clickup.Task, error) {
	return clickup.Task{ID: taskID}, nil
}

func newStub() *stubClient {
	me := clickup.User{ID: 7, Username: "amir", Email: "amir@example.com"}
	return &stubClient{
		me:    me,
		teams: []clickup.Team{{ID: "t1", Name: "Dev", Members: []clickup.User{me}}},
		tasks: []clickup.Task{
			{ID: "a", Name: "write report", Status: "open", Assignees: []clickup.User{me}},
		},
	}
}

func chatSession(t *testing.T, input string) (string, int) {
	t.Helper()
	d := query.NewDispatcher(newStub(), "")
	var out strings.Builder
	now := func() time.Time { return time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC) }
	code := runChat(d, strings.NewReader(input), &out, now)
	return out.String(), code
}

func TestChatQuitEndsSession(t *testing.T) {
	for _, phrase := range []string{"quit", "exit", "bye", "Goodbye!"} {
		out, code := chatSession(t, phrase+"\n")
		if code != ExitOK {
			t.Fatalf("%q: code = %d", phrase, code)
		}
		if !strings.Contains(out, "Bye.") {
			t.Fatalf("%q: missing farewell:\n%s", phrase, out)
		}
	}
}

func TestChatEOFEndsSession(t *testing.T) {
	out, code := chatSession(t, "")
	if code != ExitOK {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(out, "Bye.") {
		t.Fatalf("missing farewell:\n%s", out)
	}
}

func TestChatSkipsBlankLines(t *testing.T) {
	out, _ := chatSession(t, "\n   \nquit\n")
	if strings.Contains(out, "didn't understand") {
		t.Fatalf("blank line treated as utterance:\n%s", out)
	}
}

func TestChatAnswersAndContinues(t *testing.T) {
	out, code := chatSession(t, "who am i\nshow my tasks\nquit\n")
	if code != ExitOK {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(out, "Authenticated as: amir") {
		t.Fatalf("missing whoami answer:\n%s", out)
	}
	if !strings.Contains(out, "write report") {
		t.Fatalf("missing task listing:\n%s", out)
	}
}

// One identity lookup serves the whole session.
func TestChatCachesIdentity(t *testing.T) {
	stub := newStub()
	d := query.NewDispatcher(stub, "")
	var out strings.Builder
	now := func() time.Time { return time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC) }
	runChat(d, strings.NewReader("who am i\nwho am i\nmy tasks\nquit\n"), &out, now)
	if stub.meCalls != 1 {
		t.Fatalf("meCalls = %d", stub.meCalls)
	}
}

func TestChatUnknownKeepsSessionAlive(t *testing.T) {
	out, code := chatSession(t, "make me a sandwich\nwho am i\nquit\n")
	if code != ExitOK {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(out, "didn't understand") {
		t.Fatalf("missing fallback:\n%s", out)
	}
	if !strings.Contains(out, "Authenticated as: amir") {
		t.Fatalf("session did not continue:\n%s", out)
	}
}

func TestChatDetailedViewShowsComments(t *testing.T) {
	out, _ := chatSession(t, "show my detailed tasks\nquit\n")
	if !strings.Contains(out, "write report") {
		t.Fatalf("missing task block:\n%s", out)
	}
	if !strings.Contains(out, "waiting on figures") {
		t.Fatalf("missing comment preview:\n%s", out)
	}
}

func TestChatHelp(t *testing.T) {
	out, _ := chatSession(t, "help\nquit\n")
	if !strings.Contains(out, "Things you can say") {
		t.Fatalf("missing help text:\n%s", out)
	}
}

func TestChatUnresolvedUser(t *testing.T) {
	out, _ := chatSession(t, "show jeremy's tasks\nquit\n")
	if !strings.Contains(out, `"jeremy"`) || !strings.Contains(out, "understood") {
		t.Fatalf("missing unresolved-user message:\n%s", out)
	}
}
