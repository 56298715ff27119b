package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/otherjamesbrown/contacts-cli/config"
	"github.com/otherjamesbrown/contacts-cli/pkg/buildinfo"
)

func TestVersionCommand(t *testing.T) {
	if versionCmd == nil {
		t.Fatal("versionCmd is nil")
	}

	if versionCmd.Use != "version" {
		t.Errorf("Unexpected Use: %s", versionCmd.Use)
	}

	if versionCmd.Short != "Print version information" {
		t.Errorf("Unexpected Short: %s", versionCmd.Short)
	}
}

func TestPrintVersion_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := printVersion(&buf, config.OutputFormatText); err != nil {
		t.Fatalf("printVersion failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "contacts version "+buildinfo.Version+"\n") {
		t.Errorf("unexpected first line: %q", out)
	}
	if !strings.Contains(out, "Commit:") {
		t.Errorf("expected commit line, got: %q", out)
	}
}

func TestPrintVersion_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printVersion(&buf, config.OutputFormatJSON); err != nil {
		t.Fatalf("printVersion failed: %v", err)
	}

	var info buildinfo.Info
	if err := json.Unmarshal(buf.Bytes(), &info); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if info.Name != "contacts" {
		t.Errorf("expected name contacts, got %q", info.Name)
	}
}

func TestRootCommands(t *testing.T) {
	want := []string{"extract", "inspect", "config", "completion", "version"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q", name)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	for _, name := range []string{"config", "output", "log-format", "debug"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s flag not found", name)
		}
	}
}

// resetGlobals restores the global flag state after a test.
func resetGlobals(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		cfgFile, outputFormat, logFormat, debug, cfg = "", "", "", false, nil
	})
}

func TestLoadConfig_AppliesGlobalFlags(t *testing.T) {
	resetGlobals(t)
	t.Setenv("CONTACTS_CONFIG_DIR", t.TempDir())
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("mode: entities\noutput_format: yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfgFile = path
	outputFormat = "json"
	debug = true

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if loaded.Mode != "entities" {
		t.Errorf("expected mode from file, got %q", loaded.Mode)
	}
	if loaded.OutputFormat != config.OutputFormatJSON {
		t.Errorf("expected --output to win, got %q", loaded.OutputFormat)
	}
	if loaded.Log.Level != "debug" {
		t.Errorf("expected --debug to force debug level, got %q", loaded.Log.Level)
	}

	again, err := loadConfig()
	if err != nil || again != loaded {
		t.Error("expected the loaded config to be reused")
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	resetGlobals(t)
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := loadConfig(); err == nil {
		t.Error("expected error for a missing --config file")
	}
}

func TestConfigPath(t *testing.T) {
	resetGlobals(t)
	dir := t.TempDir()
	t.Setenv("CONTACTS_CONFIG_DIR", dir)

	p, err := configPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join(dir, "config.yaml") {
		t.Errorf("unexpected default path: %s", p)
	}

	cfgFile = "/etc/contacts.yaml"
	if p, _ := configPath(); p != cfgFile {
		t.Errorf("expected --config path, got %s", p)
	}
}

func TestRootRejectsBadOutputFormat(t *testing.T) {
	resetGlobals(t)
	outputFormat = "xml"

	if err := rootCmd.PersistentPreRunE(rootCmd, nil); err == nil {
		t.Error("expected error for --output xml")
	}
}
