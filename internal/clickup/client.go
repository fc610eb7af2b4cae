package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const DefaultBaseURL = "https://api.clickup.com/api/v2"

// TaskQuery narrows a team task listing at the API level.
type TaskQuery struct {
	AssigneeID    int
	IncludeClosed bool
	Subtasks      bool
	DueAfter      *time.Time
	DueBefore     *time.Time
}

// CreateTaskInput holds the fields for a new task.
type CreateTaskInput struct {
	Name        string
	Description string
	Priority    Priority
	DueDate     *time.Time
}

// UpdateTaskInput holds the mutable fields of an existing task. Empty
// fields are left untouched.
type UpdateTaskInput struct {
	Name        string
	Description string
	Status      string
	Priority    Priority
}

// Client is the surface of the task service this program consumes.
// Everything past this interface is the service's problem: timeouts,
// retries and credentials live in the implementation, not in callers.
type Client interface {
	AuthenticatedUser(ctx context.Context) (User, error)
	Teams(ctx context.Context) ([]Team, error)
	TeamTasks(ctx context.Context, teamID string, q TaskQuery) ([]Task, error)
	ListTasks(ctx context.Context, listID string, q TaskQuery) ([]Task, error)
	TaskComments(ctx context.Context, taskID string) ([]Comment, error)
	CreateTask(ctx context.Context, listID string, in CreateTaskInput) (Task, error)
	UpdateTask(ctx context.Context, taskID string, in UpdateTaskInput) (Task, error)
}

// APIError is a non-2xx response from the service.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("clickup: api error %d: %s", e.Status, body)
}

// HTTPClient talks to the ClickUp v2 REST API.
type HTTPClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(token string) *HTTPClient {
	return &HTTPClient{
		BaseURL: DefaultBaseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, query url.Values, body any, out any) error {
	u := strings.TrimRight(c.BaseURL, "/") + "/" + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("clickup: encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("clickup: build request: %w", err)
	}
	req.Header.Set("Authorization", c.Token)
	req.Header.Set("Content-Type", "application/json")

	log.WithFields(log.Fields{"method": method, "endpoint": endpoint}).Debug("clickup request")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("clickup: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("clickup: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("clickup: decode response: %w", err)
	}
	return nil
}

// Wire shapes. ClickUp nests status/priority in objects, sends due dates
// as epoch-millisecond strings, and numeric ids as either form.

type wireUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Initials string `json:"initials"`
}

func (w wireUser) toUser() User {
	return User{ID: w.ID, Username: w.Username, Email: w.Email, Initials: w.Initials}
}

type wireTask struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      *struct {
		Status string `json:"status"`
		Type   string `json:"type"`
	} `json:"status"`
	Priority *struct {
		Priority json.Number `json:"priority"`
	} `json:"priority"`
	DueDate   *string    `json:"due_date"`
	Assignees []wireUser `json:"assignees"`
	Parent    *string    `json:"parent"`
	Subtasks  []struct {
		ID string `json:"id"`
	} `json:"subtasks"`
	List *struct {
		Name string `json:"name"`
	} `json:"list"`
}

func (w wireTask) toTask() Task {
	t := Task{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
	}
	if w.Status != nil {
		t.Status = w.Status.Status
		t.StatusType = w.Status.Type
	}
	if w.Priority != nil {
		if n, err := w.Priority.Priority.Int64(); err == nil {
			t.Priority = priorityFromWire(int(n))
		}
	}
	if w.DueDate != nil {
		if ms, err := strconv.ParseInt(*w.DueDate, 10, 64); err == nil {
			due := time.UnixMilli(ms)
			t.DueDate = &due
		}
	}
	for _, a := range w.Assignees {
		t.Assignees = append(t.Assignees, a.toUser())
	}
	if w.Parent != nil {
		t.ParentID = *w.Parent
	}
	for _, s := range w.Subtasks {
		t.SubtaskIDs = append(t.SubtaskIDs, s.ID)
	}
	if w.List != nil {
		t.ListName = w.List.Name
	}
	return t
}

func (c *HTTPClient) AuthenticatedUser(ctx context.Context) (User, error) {
	var resp struct {
		User wireUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "user", nil, nil, &resp); err != nil {
		return User{}, err
	}
	return resp.User.toUser(), nil
}

func (c *HTTPClient) Teams(ctx context.Context) ([]Team, error) {
	var resp struct {
		Teams []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Members []struct {
				User wireUser `json:"user"`
			} `json:"members"`
		} `json:"teams"`
	}
	if err := c.do(ctx, http.MethodGet, "team", nil, nil, &resp); err != nil {
		return nil, err
	}
	teams := make([]Team, 0, len(resp.Teams))
	for _, t := range resp.Teams {
		team := Team{ID: t.ID, Name: t.Name}
		for _, m := range t.Members {
			team.Members = append(team.Members, m.User.toUser())
		}
		teams = append(teams, team)
	}
	return teams, nil
}

func (c *HTTPClient) TeamTasks(ctx context.Context, teamID string, q TaskQuery) ([]Task, error) {
	params := url.Values{}
	if q.AssigneeID != 0 {
		params.Set("assignees[]", strconv.Itoa(q.AssigneeID))
	}
	params.Set("include_closed", strconv.FormatBool(q.IncludeClosed))
	if q.Subtasks {
		params.Set("subtasks", "true")
	}
	if q.DueAfter != nil {
		params.Set("due_date_gt", strconv.FormatInt(q.DueAfter.UnixMilli(), 10))
	}
	if q.DueBefore != nil {
		params.Set("due_date_lt", strconv.FormatInt(q.DueBefore.UnixMilli(), 10))
	}
	var resp struct {
		Tasks []wireTask `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "team/"+teamID+"/task", params, nil, &resp); err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(resp.Tasks))
	for _, w := range resp.Tasks {
		tasks = append(tasks, w.toTask())
	}
	return tasks, nil
}

// ListTasks fetches the tasks of one list.
func (c *HTTPClient) ListTasks(ctx context.Context, listID string, q TaskQuery) ([]Task, error) {
	params := url.Values{}
	if q.AssigneeID != 0 {
		params.Set("assignees[]", strconv.Itoa(q.AssigneeID))
	}
	params.Set("include_closed", strconv.FormatBool(q.IncludeClosed))
	if q.Subtasks {
		params.Set("subtasks", "true")
	}
	var resp struct {
		Tasks []wireTask `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "list/"+listID+"/task", params, nil, &resp); err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(resp.Tasks))
	for _, w := range resp.Tasks {
		tasks = append(tasks, w.toTask())
	}
	return tasks, nil
}

// TaskComments fetches the comments of one task, newest first.
func (c *HTTPClient) TaskComments(ctx context.Context, taskID string) ([]Comment, error) {
	var resp struct {
		Comments []struct {
			ID   string `json:"id"`
			Text string `json:"comment_text"`
			User *struct {
				Username string `json:"username"`
			} `json:"user"`
		} `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, "task/"+taskID+"/comment", nil, nil, &resp); err != nil {
		return nil, err
	}
	comments := make([]Comment, 0, len(resp.Comments))
	for _, w := range resp.Comments {
		cm := Comment{ID: w.ID, Text: w.Text}
		if w.User != nil {
			cm.User = w.User.Username
		}
		comments = append(comments, cm)
	}
	return comments, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, listID string, in CreateTaskInput) (Task, error) {
	body := map[string]any{
		"name":        in.Name,
		"description": in.Description,
	}
	if in.Priority != PriorityNone {
		body["priority"] = in.Priority.WireValue()
	}
	if in.DueDate != nil {
		body["due_date"] = in.DueDate.UnixMilli()
	}
	var w wireTask
	if err := c.do(ctx, http.MethodPost, "list/"+listID+"/task", nil, body, &w); err != nil {
		return Task{}, err
	}
	return w.toTask(), nil
}

func (c *HTTPClient) UpdateTask(ctx context.Context, taskID string, in UpdateTaskInput) (Task, error) {
	body := map[string]any{}
	if in.Name != "" {
		body["name"] = in.Name
	}
	if in.Description != "" {
		body["description"] = in.Description
	}
	if in.Status != "" {
		body["status"] = in.Status
	}
	if in.Priority != PriorityNone {
		body["priority"] = in.Priority.WireValue()
	}
	var w wireTask
	if err := c.do(ctx, http.MethodPut, "task/"+taskID, nil, body, &w); err != nil {
		return Task{}, err
	}
	return w.toTask(), nil
}
