package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigFileAndFlags(t *testing.T) {
	testEnv(t)
	dir := t.TempDir()
	db := filepath.Join(dir, "from-file.json")
	cfgPath := filepath.Join(dir, "nbdb.yaml")
	content := "store:\n  path: " + db + "\n  indent: \"4\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	mustRun(t, "-c", cfgPath, "set", "k", "[1]")
	mustRun(t, "-c", cfgPath, "write")
	data, err := os.ReadFile(db)
	if err != nil {
		t.Fatalf("store from config file not used: %v", err)
	}
	if string(data) != "{\n    \"k\": [\n        1\n    ]\n}" {
		t.Errorf("snapshot = %q", data)
	}

	out := mustRun(t, "-c", cfgPath, "--indent", "none", "config", "show")
	if !strings.Contains(out, "path: "+db) || !strings.Contains(out, "indent: none") {
		t.Errorf("config show:\n%s", out)
	}

	if out := mustRun(t, "-c", cfgPath, "config", "path"); strings.TrimSpace(out) != cfgPath {
		t.Errorf("config path = %q", out)
	}
}

func TestConfigEnv(t *testing.T) {
	db := testEnv(t)
	t.Setenv("NBDB_STORE_PATH", db)

	mustRun(t, "set", "from", `"env"`)
	if out := mustRun(t, "--db", db, "get", "from"); out != "env\n" {
		t.Errorf("get = %q", out)
	}
}

func TestConfigInit(t *testing.T) {
	db := testEnv(t)
	dest := filepath.Join(t.TempDir(), "conf", "nbdb.yaml")

	out := mustRun(t, "--db", db, "--flush-interval", "1m", "config", "init", "--to", dest)
	if !strings.Contains(out, dest) {
		t.Errorf("config init output = %q", out)
	}
	if _, err := run(t, "", "config", "init", "--to", dest); err == nil {
		t.Error("config init should not overwrite")
	}

	out = mustRun(t, "-c", dest, "-o", "json", "config", "show")
	if !strings.Contains(out, db) || !strings.Contains(out, "60000000000") {
		t.Errorf("saved config not loaded:\n%s", out)
	}
	if out := mustRun(t, "config", "path"); !strings.Contains(out, "none") {
		t.Errorf("config path without a file = %q", out)
	}
}
