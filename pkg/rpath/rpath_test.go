package rpath

import (
	"path/filepath"
	"testing"
)

func TestConvert(t *testing.T) {
	exe_dir := filepath.Join(string(filepath.Separator), "opt", "reco", "bin")
	cases := map[string]string{
		"":                          "",
		"../cfg/config.toml":        filepath.Join(string(filepath.Separator), "opt", "reco", "cfg", "config.toml"),
		filepath.Join(exe_dir, "x"): filepath.Join(exe_dir, "x"),
	}
	for in, want := range cases {
		if got := Convert(exe_dir, in); got != want {
			t.Fatalf("Convert(%q): expected %q, got %q", in, want, got)
		}
	}
	if _, err := ExecutableDir(); err != nil {
		t.Fatalf("Can't find test binary: %s", err)
	}
}
