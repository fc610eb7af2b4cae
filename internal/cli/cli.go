package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"cupilot/internal/clickup"
	"cupilot/internal/nlp"
	"cupilot/internal/query"
	"cupilot/internal/render"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitNotFound = 3
	ExitInternal = 10
)

type GlobalFlags struct {
	Root    string
	Verbose bool
}

func Run(args []string) int {
	gf, rest, err := extractGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return ExitUsage
	}
	if gf.Verbose {
		log.SetLevel(log.DebugLevel)
	} else if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	if len(rest) == 0 {
		printHelp()
		return ExitUsage
	}
	cmd, cmdArgs := rest[0], rest[1:]

	switch cmd {
	case "help", "--help", "-h":
		printHelp()
		return ExitOK
	case "setup":
		return cmdSetup(gf, cmdArgs)
	case "config":
		return cmdConfig(gf, cmdArgs)
	case "whoami":
		return cmdWhoAmI(gf)
	case "teams":
		return cmdTeams(gf)
	case "tasks", "ls":
		return cmdTasks(gf, cmdArgs)
	case "create":
		return cmdCreate(gf, cmdArgs)
	case "update":
		return cmdUpdate(gf, cmdArgs)
	case "ask":
		return cmdAsk(gf, cmdArgs)
	case "chat":
		return cmdChat(gf)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printHelp()
		return ExitUsage
	}
}

func printHelp() {
	fmt.Print(`cupilot - ClickUp tasks from the terminal, plain English included

Usage:
  cupilot [global flags] <command> [args]

Global flags:
  --root <path>   Config directory (default ~/.clickup, or CLICKUP_ROOT)
  --verbose       Debug logging

Commands:
  setup <token>                 Store your ClickUp API token
  config show                   Show stored configuration
  config set <key> <value>      Set default_workspace or default_list
  whoami                        Show the authenticated user
  teams                         List your teams and member counts
  tasks [--mine] [--user NAME] [--list ID] [--due-this-week] [--priority P] [--summary]
  create <list-id> <name> [--desc TEXT] [--priority P] [--due YYYY-MM-DD]
  update <task-id> [--name TEXT] [--status S] [--desc TEXT] [--priority P]
  ask <anything>                One-shot natural language query
  chat                          Interactive natural language session
`)
}

func extractGlobalFlags(args []string) (GlobalFlags, []string, error) {
	gf := GlobalFlags{Root: clickup.DefaultConfigRoot()}
	var rest []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--root":
			if i+1 >= len(args) {
				return gf, nil, errors.New("--root requires a value")
			}
			gf.Root = args[i+1]
			i++
		case "--verbose":
			gf.Verbose = true
		default:
			rest = append(rest, args[i])
		}
	}
	return gf, rest, nil
}

// loadDispatcher builds the API client and dispatcher from stored config.
func loadDispatcher(gf GlobalFlags) (*query.Dispatcher, error) {
	cfg, err := clickup.LoadConfig(gf.Root)
	if err != nil {
		if errors.Is(err, clickup.ErrNoToken) {
			return nil, errors.New("no API token configured; run: cupilot setup <token>")
		}
		return nil, err
	}
	return query.NewDispatcher(clickup.NewHTTPClient(cfg.Token), cfg.DefaultList), nil
}

// modeFor picks the render mode an intent calls for: summary and
// detail intents get their own modes, everything else a table.
func modeFor(intent nlp.Intent) render.Mode {
	switch intent {
	case nlp.IntentSummary:
		return render.ModeSummary
	case nlp.IntentDetailTasks:
		return render.ModeDetail
	default:
		return render.ModeTable
	}
}

// runCommand executes one resolved command and renders the outcome.
func runCommand(d *query.Dispatcher, cmd nlp.Command, w io.Writer) int {
	out, err := d.Execute(context.Background(), cmd, time.Now())
	if err != nil {
		return reportError(err, w)
	}
	fmt.Fprint(w, renderOutcome(out, modeFor(cmd.Intent), time.Now()))
	return ExitOK
}

func renderOutcome(out *query.Outcome, mode render.Mode, now time.Time) string {
	switch {
	case out.Guidance != "":
		return out.Guidance + "\n"
	case out.User != nil:
		return render.WhoAmI(*out.User)
	case out.Teams != nil:
		return render.Teams(out.Teams)
	case out.Created != nil:
		return render.Created(*out.Created)
	case out.Result != nil:
		var prefix string
		if out.Subject != nil {
			prefix = fmt.Sprintf("Tasks for %s:\n", out.Subject.Username)
		}
		return prefix + render.Tasks(out.Result, mode, now)
	default:
		return ""
	}
}

func reportError(err error, w io.Writer) int {
	switch {
	case errors.Is(err, query.ErrUnknownIntent):
		fmt.Fprintln(w, "Sorry, I didn't understand that. Try 'help' for examples.")
		return ExitUsage
	case errors.Is(err, query.ErrUnresolvedAssignee):
		fmt.Fprintln(w, err.Error())
		return ExitNotFound
	default:
		fmt.Fprintln(w, err.Error())
		return ExitInternal
	}
}

func cmdSetup(gf GlobalFlags, args []string) int {
	if len(args) < 1 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(os.Stderr, "Usage: cupilot setup <api-token>")
		return ExitUsage
	}
	cfg, err := clickup.LoadConfig(gf.Root)
	if err != nil && !errors.Is(err, clickup.ErrNoToken) {
		fmt.Fprintln(os.Stderr, "setup:", err)
		return ExitInternal
	}
	cfg.Token = strings.TrimSpace(args[0])
	if err := clickup.SaveConfig(gf.Root, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "setup:", err)
		return ExitInternal
	}
	fmt.Println("Token saved to", gf.Root)
	return ExitOK
}

func cmdConfig(gf GlobalFlags, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: cupilot config <show|set> ...")
		return ExitUsage
	}
	switch args[0] {
	case "show":
		cfg, err := clickup.LoadConfig(gf.Root)
		if err != nil && !errors.Is(err, clickup.ErrNoToken) {
			fmt.Fprintln(os.Stderr, "config:", err)
			return ExitInternal
		}
		fmt.Println("Root:             ", gf.Root)
		fmt.Println("Token configured: ", cfg.Token != "")
		fmt.Println("Default workspace:", orNone(cfg.DefaultWorkspace))
		fmt.Println("Default list:     ", orNone(cfg.DefaultList))
		return ExitOK
	case "set":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: cupilot config set <default_workspace|default_list> <value>")
			return ExitUsage
		}
		cfg, err := clickup.LoadConfig(gf.Root)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
			return ExitInternal
		}
		key := strings.ToLower(strings.TrimSpace(args[1]))
		value := strings.TrimSpace(args[2])
		switch key {
		case "default_workspace":
			cfg.DefaultWorkspace = value
		case "default_list":
			cfg.DefaultList = value
		default:
			fmt.Fprintf(os.Stderr, "Unknown config key %q (allowed: default_workspace, default_list)\n", key)
			return ExitUsage
		}
		if err := clickup.SaveConfig(gf.Root, cfg); err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
			return ExitInternal
		}
		fmt.Println("Updated", key)
		return ExitOK
	default:
		fmt.Fprintln(os.Stderr, "Usage: cupilot config <show|set> ...")
		return ExitUsage
	}
}

func cmdWhoAmI(gf GlobalFlags) int {
	d, err := loadDispatcher(gf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "whoami:", err)
		return ExitInternal
	}
	return runCommand(d, nlp.Command{Intent: nlp.IntentWhoAmI}, os.Stdout)
}

func cmdTeams(gf GlobalFlags) int {
	d, err := loadDispatcher(gf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "teams:", err)
		return ExitInternal
	}
	return runCommand(d, nlp.Command{Intent: nlp.IntentListTeams}, os.Stdout)
}

func cmdTasks(gf GlobalFlags, args []string) int {
	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	mine := fs.Bool("mine", false, "only tasks assigned to you")
	user := fs.String("user", "", "tasks for a team member")
	listID := fs.String("list", "", "restrict to one list id")
	dueWeek := fs.Bool("due-this-week", false, "only tasks due in the next 7 days")
	priority := fs.String("priority", "", "priority filter (low|normal|high|urgent)")
	summaryOut := fs.Bool("summary", false, "summary output instead of a table")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if *mine && *user != "" {
		fmt.Fprintln(os.Stderr, "tasks: --mine and --user are mutually exclusive")
		return ExitUsage
	}
	if *listID != "" && *user != "" {
		fmt.Fprintln(os.Stderr, "tasks: --list and --user are mutually exclusive")
		return ExitUsage
	}

	cmd := nlp.Command{Intent: nlp.IntentListTasks}
	if *summaryOut {
		cmd.Intent = nlp.IntentSummary
	}
	if *user != "" {
		cmd.Intent = nlp.IntentUserTasks
		cmd.Subject = strings.TrimSpace(*user)
	}
	cmd.Filters.AssigneeMe = *mine
	if *dueWeek {
		cmd.Filters.Due = nlp.DueThisWeek
	}
	if *priority != "" {
		p := clickup.NormalizePriority(*priority)
		if p == clickup.PriorityNone {
			fmt.Fprintf(os.Stderr, "tasks: invalid priority %q\n", *priority)
			return ExitUsage
		}
		cmd.Filters.Priority = p
	}

	if *listID != "" {
		return listScopedTasks(gf, *listID, *mine, cmd)
	}

	d, err := loadDispatcher(gf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tasks:", err)
		return ExitInternal
	}
	return runCommand(d, cmd, os.Stdout)
}

// listScopedTasks fetches one list directly instead of walking every
// team, then runs the same filter engine over it.
func listScopedTasks(gf GlobalFlags, listID string, mine bool, cmd nlp.Command) int {
	cfg, err := clickup.LoadConfig(gf.Root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tasks:", err)
		return ExitInternal
	}
	client := clickup.NewHTTPClient(cfg.Token)
	ctx := context.Background()

	assigneeID := 0
	if mine {
		me, err := client.AuthenticatedUser(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "tasks:", err)
			return ExitInternal
		}
		assigneeID = me.ID
	}
	tasks, err := client.ListTasks(ctx, listID, clickup.TaskQuery{AssigneeID: assigneeID, Subtasks: true})
	if err != nil {
		fmt.Fprintln(os.Stderr, "tasks:", err)
		return ExitInternal
	}
	now := time.Now()
	res := query.Apply(tasks, cmd.Filters, assigneeID, now)
	fmt.Print(render.Tasks(res, modeFor(cmd.Intent), now))
	return ExitOK
}

func cmdCreate(gf GlobalFlags, args []string) int {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	desc := fs.String("desc", "", "task description")
	priority := fs.String("priority", "", "priority (low|normal|high|urgent)")
	due := fs.String("due", "", "due date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	rest := fs.Args()
	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, `Usage: cupilot create <list-id> <name> [--desc ...] [--priority ...] [--due YYYY-MM-DD]`)
		return ExitUsage
	}
	in := clickup.CreateTaskInput{
		Name:        strings.TrimSpace(strings.Join(rest[1:], " ")),
		Description: *desc,
	}
	if *priority != "" {
		p := clickup.NormalizePriority(*priority)
		if p == clickup.PriorityNone {
			fmt.Fprintf(os.Stderr, "create: invalid priority %q\n", *priority)
			return ExitUsage
		}
		in.Priority = p
	}
	if *due != "" {
		t, err := time.ParseInLocation("2006-01-02", *due, time.Local)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create: invalid due date %q (want YYYY-MM-DD)\n", *due)
			return ExitUsage
		}
		in.DueDate = &t
	}

	cfg, err := clickup.LoadConfig(gf.Root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "create:", err)
		return ExitInternal
	}
	task, err := clickup.NewHTTPClient(cfg.Token).CreateTask(context.Background(), rest[0], in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "create:", err)
		return ExitInternal
	}
	fmt.Print(render.Created(task))
	return ExitOK
}

func cmdUpdate(gf GlobalFlags, args []string) int {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	name := fs.String("name", "", "new name")
	status := fs.String("status", "", "new status")
	desc := fs.String("desc", "", "new description")
	priority := fs.String("priority", "", "new priority (low|normal|high|urgent)")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	rest := fs.Args()
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: cupilot update <task-id> [--name ...] [--status ...] [--desc ...] [--priority ...]")
		return ExitUsage
	}
	in := clickup.UpdateTaskInput{Name: *name, Status: *status, Description: *desc}
	if *priority != "" {
		p := clickup.NormalizePriority(*priority)
		if p == clickup.PriorityNone {
			fmt.Fprintf(os.Stderr, "update: invalid priority %q\n", *priority)
			return ExitUsage
		}
		in.Priority = p
	}
	if in == (clickup.UpdateTaskInput{}) {
		fmt.Fprintln(os.Stderr, "update: nothing to change")
		return ExitUsage
	}

	cfg, err := clickup.LoadConfig(gf.Root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "update:", err)
		return ExitInternal
	}
	task, err := clickup.NewHTTPClient(cfg.Token).UpdateTask(context.Background(), rest[0], in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "update:", err)
		return ExitInternal
	}
	fmt.Printf("Updated task %s\n", task.ID)
	return ExitOK
}

func cmdAsk(gf GlobalFlags, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, `Usage: cupilot ask "<anything>"`)
		return ExitUsage
	}
	cmd := nlp.Interpret(strings.Join(args, " "))
	// Help and unintelligible input are answered locally; neither needs
	// a configured token.
	switch cmd.Intent {
	case nlp.IntentHelp:
		fmt.Print(render.Help)
		return ExitOK
	case nlp.IntentUnknown:
		fmt.Println("Sorry, I didn't understand that. Try 'help' for examples.")
		return ExitUsage
	}
	d, err := loadDispatcher(gf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ask:", err)
		return ExitInternal
	}
	return runCommand(d, cmd, os.Stdout)
}

func cmdChat(gf GlobalFlags) int {
	d, err := loadDispatcher(gf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "chat:", err)
		return ExitInternal
	}
	return runChat(d, os.Stdin, os.Stdout, time.Now)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
