package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cupilot/internal/nlp"
	"cupilot/internal/query"
	"cupilot/internal/render"
)

const chatPrompt = "you> "

var exitPhrases = map[string]bool{
	"quit": true, "exit": true, "bye": true, "goodbye": true, "q": true,
}

// runChat reads utterances line by line and answers each one. Errors
// are reported and the session continues; only an exit phrase or EOF
// ends it. The clock is injected per line so replayed transcripts stay
// deterministic.
func runChat(d *query.Dispatcher, in io.Reader, out io.Writer, now func() time.Time) int {
	fmt.Fprintln(out, "Connected to ClickUp. Ask me about your tasks ('help' for examples, 'quit' to leave).")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, chatPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Bye.")
			return ExitOK
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if exitPhrases[strings.ToLower(strings.Trim(line, "?!. "))] {
			fmt.Fprintln(out, "Bye.")
			return ExitOK
		}
		respond(d, line, out, now())
	}
}

// respond handles one utterance inside the session.
func respond(d *query.Dispatcher, line string, out io.Writer, now time.Time) {
	cmd := nlp.Interpret(line)
	switch cmd.Intent {
	case nlp.IntentHelp:
		fmt.Fprint(out, render.Help)
		return
	case nlp.IntentUnknown:
		fmt.Fprintln(out, "Sorry, I didn't understand that. Try 'help' for examples.")
		return
	}

	o, err := d.Execute(context.Background(), cmd, now)
	if err != nil {
		if errors.Is(err, query.ErrUnknownIntent) {
			fmt.Fprintln(out, "Sorry, I didn't understand that. Try 'help' for examples.")
			return
		}
		fmt.Fprintln(out, err.Error())
		return
	}
	fmt.Fprint(out, renderOutcome(o, modeFor(cmd.Intent), now))
}
