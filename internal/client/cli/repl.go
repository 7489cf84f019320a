package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context) error
	Open(ctx context.Context, n string) error
	History(ctx context.Context) error
	Attach(ctx context.Context, paths []string) error
	Detach(ctx context.Context, n string) error
	Staged(ctx context.Context) error
	Draft(ctx context.Context, text string) error
	Send(ctx context.Context, text string) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: whoami, list, open <n>, history, attach <path>... (quote paths with spaces), detach <n>, staged, draft <text>, send [text], logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own failures to the user.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("chat%s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "open":
			if len(args) != 1 {
				printlnFn("Usage: open <n>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "history":
			_ = a.History(ctx)

		case "attach":
			paths, err := splitArgs(rest)
			if err != nil || len(paths) == 0 {
				printlnFn("Usage: attach <path>...")
				continue
			}
			_ = a.Attach(ctx, paths)

		case "detach":
			if len(args) != 1 {
				printlnFn("Usage: detach <n>")
				continue
			}
			_ = a.Detach(ctx, args[0])

		case "staged":
			_ = a.Staged(ctx)

		case "draft":
			_ = a.Draft(ctx, rest)

		case "send":
			_ = a.Send(ctx, rest)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

var errUnterminatedQuote = errors.New("unterminated quote")

// splitArgs splits s on white space. Single or double quotes group text,
// white space included, into one argument.
func splitArgs(s string) ([]string, error) {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		inArg bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case unicode.IsSpace(r):
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, errUnterminatedQuote
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
