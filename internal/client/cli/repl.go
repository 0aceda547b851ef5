package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/qaforum/internal/client/guard"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

var errSignInRequired = errors.New("sign in required")

const questionView = guard.Question

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	navigate(v guard.View) guard.Decision

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	List(ctx context.Context) error
	Search(ctx context.Context, query string) error
	Show(ctx context.Context, id int64) error
	Ask(ctx context.Context) error
	EditQuestion(ctx context.Context, id int64) error
	DeleteQuestion(ctx context.Context, id int64) error

	Answer(ctx context.Context, questionID int64) error
	EditAnswer(ctx context.Context, id int64) error
	DeleteAnswer(ctx context.Context, id int64) error

	Confirm(ctx context.Context) error
	Cancel(ctx context.Context) error
}

// command describes one REPL verb: the view it enters (empty for none),
// whether it takes an id argument, and the handler.
type command struct {
	view  guard.View
	id    idArg
	usage string
	run   func(ctx context.Context, a execIface, id int64, rest string) error
}

type idArg int

const (
	noID idArg = iota
	optionalID
	requiredID
)

var commands = map[string]command{
	"register": {view: guard.Register, run: func(ctx context.Context, a execIface, _ int64, _ string) error { return a.Register(ctx) }},
	"login":    {view: guard.SignIn, run: func(ctx context.Context, a execIface, _ int64, _ string) error { return a.Login(ctx) }},
	"logout":   {run: func(ctx context.Context, a execIface, _ int64, _ string) error { return a.Logout(ctx) }},
	"whoami":   {view: guard.Landing, run: func(ctx context.Context, a execIface, _ int64, _ string) error { return a.WhoAmI(ctx) }},

	"list":   {view: guard.Home, run: func(ctx context.Context, a execIface, _ int64, _ string) error { return a.List(ctx) }},
	"search": {view: guard.Home, usage: "search [text]", run: func(ctx context.Context, a execIface, _ int64, rest string) error { return a.Search(ctx, rest) }},
	"show":   {view: guard.Question, id: requiredID, usage: "show <question id>", run: func(ctx context.Context, a execIface, id int64, _ string) error { return a.Show(ctx, id) }},
	"ask":    {view: guard.Ask, run: func(ctx context.Context, a execIface, _ int64, _ string) error { return a.Ask(ctx) }},
	"editq":  {view: guard.EditQuestion, id: requiredID, usage: "editq <question id>", run: func(ctx context.Context, a execIface, id int64, _ string) error { return a.EditQuestion(ctx, id) }},
	"delq":   {view: guard.Question, id: requiredID, usage: "delq <question id>", run: func(ctx context.Context, a execIface, id int64, _ string) error { return a.DeleteQuestion(ctx, id) }},

	"answer": {view: guard.Question, id: optionalID, usage: "answer [question id]", run: func(ctx context.Context, a execIface, id int64, _ string) error { return a.Answer(ctx, id) }},
	"edita":  {view: guard.EditAnswer, id: requiredID, usage: "edita <answer id>", run: func(ctx context.Context, a execIface, id int64, _ string) error { return a.EditAnswer(ctx, id) }},
	"dela":   {view: guard.Question, id: requiredID, usage: "dela <answer id>", run: func(ctx context.Context, a execIface, id int64, _ string) error { return a.DeleteAnswer(ctx, id) }},

	"yes": {run: func(ctx context.Context, a execIface, _ int64, _ string) error { return a.Confirm(ctx) }},
	"no":  {run: func(ctx context.Context, a execIface, _ int64, _ string) error { return a.Cancel(ctx) }},
}

var aliases = map[string]string{
	"l":    "list",
	"home": "list",
	"y":    "yes",
	"n":    "no",
}

// runREPL starts a simple read-eval-print loop for the qaforum client.
//
// It reads a line from r, parses the first token as the
// command, asks the route guard whether the command's view may be entered
// and dispatches to methods on 'a'. The loop exits on EOF or when
// the user types "exit" or "quit".
//
// Commands
//
//	Anyone:
//	  - help                  - show available commands
//	  - register | login      - create an account or sign in
//	  - whoami                - show the signed-in user
//	  - exit | quit           - leave the program
//
//	Signed in:
//	  - list | l | home       - list questions, newest first
//	  - search [text]         - filter questions; without text opens live search
//	  - show <id>             - show a question and its answers
//	  - ask                   - post a question
//	  - editq <id> | delq <id>
//	  - answer [question id]  - answer the open or given question
//	  - edita <id> | dela <id>
//	  - logout                - sign out (asks for confirmation)
//	  - yes | no              - confirm or cancel a pending delete or logout
//
// Errors returned by command handlers are printed as a single line; the loop
// keeps going.
//
// Prompts inside handlers read from the same reader, so r must be the only
// reader of the terminal.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("qa (%s)> ", statusFn()))
		raw, err := r.ReadString('\n')
		if err != nil && raw == "" {
			return
		}
		line := strings.TrimSpace(raw)
		name, rest, _ := strings.Cut(line, " ")
		if name == "" {
			continue
		}
		if alias, ok := aliases[name]; ok {
			name = alias
		}

		switch name {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: list, search, show, ask, editq, delq, answer, edita, dela, whoami, logout, yes, no, exit")
			} else {
				printlnFn("Available commands: register, login, whoami, exit")
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		cmd, ok := commands[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}

		if err := dispatch(ctx, a, cmd, strings.TrimSpace(rest)); err != nil {
			printlnFn(UserMessage(err))
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd command, rest string) error {
	var id int64
	if cmd.id != noID {
		arg, tail, _ := strings.Cut(rest, " ")
		switch {
		case arg == "" && cmd.id == requiredID:
			return usageError(cmd.usage)
		case arg != "":
			v, err := strconv.ParseInt(arg, 10, 64)
			if err != nil || v <= 0 {
				return usageError(cmd.usage)
			}
			id, rest = v, tail
		}
	}

	if cmd.view != "" {
		if d := a.navigate(cmd.view); !d.Admitted {
			return errSignInRequired
		}
	}
	return cmd.run(ctx, a, id, rest)
}

type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }
