package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  []string
}

func (f *fakeExec) record(call string, arg string) error {
	f.calls = append(f.calls, call)
	f.args = append(f.args, arg)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register", "")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", "")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", "")
}
func (f *fakeExec) WhoAmI(ctx context.Context) error  { return f.record("whoami", "") }
func (f *fakeExec) List(ctx context.Context) error    { return f.record("list", "") }
func (f *fakeExec) History(ctx context.Context) error { return f.record("history", "") }
func (f *fakeExec) Staged(ctx context.Context) error  { return f.record("staged", "") }
func (f *fakeExec) Open(ctx context.Context, n string) error {
	return f.record("open", n)
}
func (f *fakeExec) Attach(ctx context.Context, paths []string) error {
	return f.record("attach", strings.Join(paths, ","))
}
func (f *fakeExec) Detach(ctx context.Context, n string) error {
	return f.record("detach", n)
}
func (f *fakeExec) Draft(ctx context.Context, text string) error {
	return f.record("draft", text)
}
func (f *fakeExec) Send(ctx context.Context, text string) error {
	return f.record("send", text)
}

func capturePrintln(t *testing.T) *strings.Builder {
	t.Helper()
	var sb strings.Builder
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(&sb, a...) }
	t.Cleanup(func() { printlnFn = orig })
	return &sb
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := capturePrintln(t)

	input := bufio.NewReader(strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"l",
		"open 2",
		"attach a.png b.pdf",
		"detach 1",
		"staged",
		"draft   hello   there ",
		"send",
		"send right now",
		"history",
		"whoami",
		"logout",
		"foobar",
		"exit",
		"list",
	}, "\n")))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return " (s)" }, input)

	assert.Equal(t, []string{
		"login", "list", "open", "attach", "detach", "staged", "draft",
		"send", "send", "history", "whoami", "logout",
	}, exec.calls)
	assert.Equal(t, "2", exec.args[2])
	assert.Equal(t, "a.png,b.pdf", exec.args[3])
	assert.Equal(t, "hello   there", exec.args[6])
	assert.Equal(t, "", exec.args[7])
	assert.Equal(t, "right now", exec.args[8])

	s := out.String()
	assert.Contains(t, s, helpLoggedOut)
	assert.Contains(t, s, helpLoggedIn)
	assert.Contains(t, s, "Unknown command: foobar")
	assert.Contains(t, s, "chat (s)> ")
	assert.Contains(t, s, "Bye!")
}

func TestRunREPL_UsageAndEOF(t *testing.T) {
	out := capturePrintln(t)

	input := bufio.NewReader(strings.NewReader("open\nattach\nattach \"a b.png\ndetach 1 2\n\n"))
	exec := &fakeExec{loggedIn: true}

	runREPL(context.Background(), exec, func() string { return "" }, input)

	assert.Empty(t, exec.calls)
	assert.Contains(t, out.String(), "Usage: open <n>")
	assert.Contains(t, out.String(), "Usage: attach <path>...")
	assert.Contains(t, out.String(), "Usage: detach <n>")
}

func TestRunREPL_AttachQuotedPaths(t *testing.T) {
	capturePrintln(t)

	input := bufio.NewReader(strings.NewReader(`attach "/tmp/my photos/cat.png" 'Q1 report.pdf' notes.txt` + "\n"))
	exec := &fakeExec{loggedIn: true}

	runREPL(context.Background(), exec, func() string { return "" }, input)

	assert.Equal(t, []string{"attach"}, exec.calls)
	assert.Equal(t, "/tmp/my photos/cat.png,Q1 report.pdf,notes.txt", exec.args[0])
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "  a   b ", want: []string{"a", "b"}},
		{in: `"a b" c`, want: []string{"a b", "c"}},
		{in: `it's"x y"`, wantErr: true},
		{in: `pre"mid dle"post`, want: []string{"premid dlepost"}},
		{in: `""`, want: []string{""}},
		{in: `'he said "hi"'`, want: []string{`he said "hi"`}},
		{in: `"open`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := splitArgs(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUnterminatedQuote)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
