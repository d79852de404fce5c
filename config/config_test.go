package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	mcerrors "github.com/wippyai/modcache/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modcache.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
		check   func(t *testing.T, c *Config)
	}{
		{
			name: "defaults",
			body: "",
			check: func(t *testing.T, c *Config) {
				if c.Gas.Budget != 10_000 || c.Logging.Level != "info" || c.State.Version != 1 {
					t.Errorf("config = %+v", c)
				}
			},
		},
		{
			name: "overrides",
			body: `
[logging]
level = "debug"
encoding = "json"

[gas]
budget = 50
struct_cost = 3

[state]
version = 7
modules = ["a.mv", "b.mv"]
`,
			check: func(t *testing.T, c *Config) {
				if c.Logging.Level != "debug" || c.Logging.Encoding != "json" {
					t.Errorf("logging = %+v", c.Logging)
				}
				if c.Gas.Budget != 50 || c.Gas.StructCost != 3 || c.Gas.TokenCost != 1 {
					t.Errorf("gas = %+v", c.Gas)
				}
				if c.State.Version != 7 || len(c.State.Modules) != 2 {
					t.Errorf("state = %+v", c.State)
				}
			},
		},
		{name: "unknown key", body: "[gas]\nbudgit = 5\n", wantErr: "gas.budgit"},
		{name: "bad level", body: "[logging]\nlevel = \"loud\"\n", wantErr: "logging.level"},
		{name: "bad encoding", body: "[logging]\nencoding = \"xml\"\n", wantErr: "logging.encoding"},
		{name: "zero budget", body: "[gas]\nbudget = 0\n", wantErr: "gas.budget"},
		{name: "zero token cost", body: "[gas]\ntoken_cost = 0\n", wantErr: "gas.token_cost"},
		{name: "zero struct cost", body: "[gas]\nstruct_cost = 0\n", wantErr: "gas.struct_cost"},
		{name: "empty module path", body: "[state]\nmodules = [\" \"]\n", wantErr: "state.modules[0]"},
		{name: "syntax", body: "[gas\n", wantErr: "failed to parse TOML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want mention of %q", err, tt.wantErr)
				}
				var e *mcerrors.Error
				if !errors.As(err, &e) || e.Phase != mcerrors.PhaseConfig {
					t.Errorf("err = %v, want config phase error", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error")
	}
}

func TestEncodeLoad(t *testing.T) {
	cfg := Default()
	cfg.State.Modules = []string{"modules/A.mv"}
	cfg.Gas.Budget = 77

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Load(writeConfig(t, buf.String()))
	if err != nil {
		t.Fatalf("Load: %v\n%s", err, buf.String())
	}
	if got.Gas.Budget != 77 || len(got.State.Modules) != 1 || got.State.Modules[0] != "modules/A.mv" {
		t.Errorf("reloaded %+v", got)
	}
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "warn"
	cfg.Logging.Development = true
	l, err := cfg.Logger()
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) || !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("logger ignores the configured level")
	}
}

func TestLoaderOptions(t *testing.T) {
	cfg := Default()
	cfg.Gas.TokenCost = 2
	cfg.Gas.StructCost = 9
	opts := cfg.LoaderOptions()
	if opts.Costs.TokenCost != 2 || opts.Costs.StructCost != 9 {
		t.Errorf("costs = %+v", opts.Costs)
	}
}
