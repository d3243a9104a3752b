package cli

import (
	"bytes"
	"path/filepath"
	"testing"
)

// executeCommand runs a command with the given args and captures output.
func executeCommand(args ...string) (string, error) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// testEnv points HOME at a temp dir and returns a fresh database path.
func testEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"LEADCTL_DB", "LEADCTL_COOLDOWN_DAYS", "LEADCTL_QUIET_HOURS", "LEADCTL_PATTERNS_FILE", "LEADCTL_DEV_MODE"} {
		t.Setenv(k, "")
	}
	return filepath.Join(home, "leads.db")
}

func TestRootHelp(t *testing.T) {
	_, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGlobalFlags(t *testing.T) {
	root := NewRootCmd()

	formatFlag := root.PersistentFlags().Lookup("format")
	if formatFlag == nil {
		t.Fatal("expected --format flag to exist")
	}
	if formatFlag.DefValue != "text" {
		t.Errorf("expected --format default 'text', got %q", formatFlag.DefValue)
	}

	for _, name := range []string{"db", "config"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to exist", name)
		}
	}
}

func TestInvalidFormat(t *testing.T) {
	testEnv(t)

	_, err := executeCommand("classify", "maybe", "--format", "xml")
	if err == nil {
		t.Fatal("expected error for invalid --format")
	}
}

func TestVersion(t *testing.T) {
	testEnv(t)

	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out == "" {
		t.Error("version printed nothing")
	}
}
