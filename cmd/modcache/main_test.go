package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseStructPath(t *testing.T) {
	tests := []struct {
		in      string
		id      bytecode.ModuleID
		name    string
		wantErr bool
	}{
		{in: "0x1::Box::T", id: bytecode.NewModuleID(bytecode.MustParseAddress("0x1"), "Box"), name: "T"},
		{in: "Box", wantErr: true},
		{in: "0x1::Box::", wantErr: true},
		{in: "zz::Box::T", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, name, err := parseStructPath(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseStructPath(%q) succeeded", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if id != tt.id || name != tt.name {
				t.Errorf("parseStructPath(%q) = %v, %q", tt.in, id, name)
			}
		})
	}
}

func TestParseTypeArg(t *testing.T) {
	tests := []struct {
		in   string
		want types.Type
		ok   bool
	}{
		{"u64", types.U64(), true},
		{" bool ", types.Bool(), true},
		{"address", types.Address(), true},
		{"vector", types.Type{}, false},
	}
	for _, tt := range tests {
		got, err := parseTypeArg(tt.in)
		if (err == nil) != tt.ok || (tt.ok && !got.Equal(tt.want)) {
			t.Errorf("parseTypeArg(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestDemoInspectResolve(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "modcache.toml")

	if _, err := execute(t, "demo", dir); err != nil {
		t.Fatalf("demo: %v", err)
	}

	out, err := execute(t, "inspect", "--color", "off", "-c", cfg)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{
		"struct Purse {vector<{u64}>, address}",
		"struct Wallet {{vector<{u64}>, address}, {u64}}",
		"struct Pending<T0> unresolved",
		"fun mint -> 0x1::Box::make",
		"fun split -> 0x1::Bank::deposit (unpublished)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "resolve", "0x1::Box::T", "--type-arg", "u64", "--color", "off", "-c", cfg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out, "0x1::Box::T = {u64}") {
		t.Errorf("resolve output = %q", out)
	}

	if _, err := execute(t, "resolve", "0x1::Box::T", "--type-arg", "u64,bool", "--color", "off", "-c", cfg); err == nil {
		t.Error("resolve accepted the wrong number of type arguments")
	}
}
