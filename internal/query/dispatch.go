package query

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	log "github.com/sirupsen/logrus"

	"cupilot/internal/clickup"
	"cupilot/internal/nlp"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

// newCommandID tags one dispatched command for log correlation.
func newCommandID(now time.Time) string {
	id, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(randReader{}, 0))
	if err != nil {
		return fmt.Sprintf("cmd_%d", now.UnixNano())
	}
	return "cmd_" + strings.ToUpper(id.String())
}

// Outcome is what one executed Command produced. Exactly one of the
// payload fields is set, matching the intent.
type Outcome struct {
	Command  nlp.Command
	TraceID  string
	User     *clickup.User
	Teams    []clickup.Team
	Subject  *clickup.User // resolved person for user-tasks
	Result   *Result
	Created  *clickup.Task
	Guidance string
}

// Dispatcher maps a Command to task-service calls and runs the filter
// engine over what comes back. Sequential and blocking throughout; the
// only state carried across commands is the authenticated identity.
type Dispatcher struct {
	client      clickup.Client
	defaultList string
	me          *clickup.User
}

func NewDispatcher(c clickup.Client, defaultList string) *Dispatcher {
	return &Dispatcher{client: c, defaultList: defaultList}
}

// Me returns the authenticated user, fetched once per process.
func (d *Dispatcher) Me(ctx context.Context) (clickup.User, error) {
	if d.me != nil {
		return *d.me, nil
	}
	u, err := d.client.AuthenticatedUser(ctx)
	if err != nil {
		return clickup.User{}, err
	}
	d.me = &u
	return u, nil
}

// Execute runs one resolved Command. now is injected so date windows
// stay deterministic under test.
func (d *Dispatcher) Execute(ctx context.Context, cmd nlp.Command, now time.Time) (*Outcome, error) {
	out := &Outcome{Command: cmd, TraceID: newCommandID(now)}
	logger := log.WithFields(log.Fields{"cmd": out.TraceID, "intent": cmd.Intent})
	logger.Debug("dispatch")

	switch cmd.Intent {
	case nlp.IntentUnknown:
		return nil, ErrUnknownIntent

	case nlp.IntentWhoAmI:
		u, err := d.Me(ctx)
		if err != nil {
			return nil, &UpstreamError{Op: "get user", Command: cmd, Err: err}
		}
		out.User = &u
		return out, nil

	case nlp.IntentListTeams:
		teams, err := d.client.Teams(ctx)
		if err != nil {
			return nil, &UpstreamError{Op: "list teams", Command: cmd, Err: err}
		}
		out.Teams = teams
		return out, nil

	case nlp.IntentListTasks, nlp.IntentDetailTasks, nlp.IntentSummary, nlp.IntentUserTasks:
		assigneeID := 0
		switch {
		case cmd.Intent == nlp.IntentUserTasks:
			u, err := d.resolveUser(ctx, cmd.Subject, cmd)
			if err != nil {
				return nil, err
			}
			out.Subject = &u
			assigneeID = u.ID
		case cmd.Filters.AssigneeName != "":
			u, err := d.resolveUser(ctx, cmd.Filters.AssigneeName, cmd)
			if err != nil {
				return nil, err
			}
			out.Subject = &u
			assigneeID = u.ID
		case cmd.Filters.AssigneeMe:
			u, err := d.Me(ctx)
			if err != nil {
				return nil, &UpstreamError{Op: "get user", Command: cmd, Err: err}
			}
			assigneeID = u.ID
		}
		tasks, err := d.fetchTasks(ctx, assigneeID, cmd)
		if err != nil {
			return nil, err
		}
		out.Result = Apply(tasks, cmd.Filters, assigneeID, now)
		logger.WithField("matched", out.Result.Total).Debug("filtered")
		if cmd.Intent == nlp.IntentDetailTasks {
			if err := d.attachComments(ctx, out.Result, cmd); err != nil {
				return nil, err
			}
		}
		return out, nil

	case nlp.IntentCreateTask:
		if cmd.TaskName == "" {
			out.Guidance = "Could not determine a task name to create. Quote the name, e.g.: create task \"Review PR #123\""
			return out, nil
		}
		if d.defaultList == "" {
			out.Guidance = fmt.Sprintf("To create %q, set a default list first:\n  cupilot config set default_list <LIST_ID>\nor run: cupilot create <LIST_ID> %q", cmd.TaskName, cmd.TaskName)
			return out, nil
		}
		created, err := d.client.CreateTask(ctx, d.defaultList, clickup.CreateTaskInput{Name: cmd.TaskName})
		if err != nil {
			return nil, &UpstreamError{Op: "create task", Command: cmd, Err: err}
		}
		out.Created = &created
		return out, nil

	case nlp.IntentUpdateTask:
		// One utterance cannot safely identify which task to mutate;
		// point at the explicit subcommand instead.
		out.Guidance = "To update a task, find its id first (cupilot tasks), then run:\n  cupilot update <TASK_ID> --status complete"
		return out, nil

	default:
		return nil, ErrUnknownIntent
	}
}

// attachComments loads comments for every task already in the result.
// Only the filtered set is fetched, one sequential call per task.
func (d *Dispatcher) attachComments(ctx context.Context, res *Result, cmd nlp.Command) error {
	for i := range res.Tasks {
		comments, err := d.client.TaskComments(ctx, res.Tasks[i].ID)
		if err != nil {
			return &UpstreamError{Op: "load comments for " + res.Tasks[i].ID, Command: cmd, Err: err}
		}
		res.Tasks[i].Comments = comments
	}
	return nil
}

// resolveUser matches a name against team members: exact
// case-insensitive match on username, email local part, or initials.
func (d *Dispatcher) resolveUser(ctx context.Context, name string, cmd nlp.Command) (clickup.User, error) {
	teams, err := d.client.Teams(ctx)
	if err != nil {
		return clickup.User{}, &UpstreamError{Op: "list teams", Command: cmd, Err: err}
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for _, team := range teams {
		for _, u := range team.Members {
			if strings.ToLower(u.Username) == want {
				return u, nil
			}
			if local, _, ok := strings.Cut(u.Email, "@"); ok && strings.ToLower(local) == want {
				return u, nil
			}
			if u.Initials != "" && strings.ToLower(u.Initials) == want {
				return u, nil
			}
		}
	}
	return clickup.User{}, &UnresolvedAssigneeError{Name: name, Command: cmd}
}

// fetchTasks collects open tasks across every accessible workspace,
// one sequential call per team.
func (d *Dispatcher) fetchTasks(ctx context.Context, assigneeID int, cmd nlp.Command) ([]clickup.Task, error) {
	teams, err := d.client.Teams(ctx)
	if err != nil {
		return nil, &UpstreamError{Op: "list teams", Command: cmd, Err: err}
	}
	q := clickup.TaskQuery{AssigneeID: assigneeID, Subtasks: true}
	var all []clickup.Task
	for _, team := range teams {
		tasks, err := d.client.TeamTasks(ctx, team.ID, q)
		if err != nil {
			return nil, &UpstreamError{Op: "list tasks for " + team.Name, Command: cmd, Err: err}
		}
		all = append(all, tasks...)
	}
	return all, nil
}
