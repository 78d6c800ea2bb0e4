package command

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

// testEnv isolates a test from the user's configuration and returns a
// database path inside a temp dir.
func testEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("NBDB_CONFIG", "")
	t.Setenv("NBDB_BACKUP_PASSPHRASE", "")
	return filepath.Join(t.TempDir(), "db.json")
}

type result struct {
	out string
	err string
}

// run executes the app with args and stdin, returning captured output.
func run(t *testing.T, stdin string, args ...string) (result, error) {
	t.Helper()
	app := App()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Reader = strings.NewReader(stdin)
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"nbdb"}, args...))
	return result{out: out.String(), err: errOut.String()}, err
}

// mustRun is run for commands expected to succeed.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	res, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("nbdb %s: %v\nstderr: %s", strings.Join(args, " "), err, res.err)
	}
	return res.out
}
