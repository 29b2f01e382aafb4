package gmx

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantArgs  []string
		wantStdin string
	}{
		{
			name:     "string value",
			opts:     Options{"f": "traj.xtc"},
			wantArgs: []string{"-f", "traj.xtc"},
		},
		{
			name:     "bool true is bare flag",
			opts:     Options{"center": true},
			wantArgs: []string{"-center"},
		},
		{
			name:     "bool false negates",
			opts:     Options{"pbc": false},
			wantArgs: []string{"-nopbc"},
		},
		{
			name:     "string slice expands after flag",
			opts:     Options{"n": []string{"a.ndx", "b.ndx"}},
			wantArgs: []string{"-n", "a.ndx", "b.ndx"},
		},
		{
			name:     "numbers",
			opts:     Options{"dt": 100, "b": 2.5},
			wantArgs: []string{"-b", "2.5", "-dt", "100"},
		},
		{
			name:     "nil drops the flag",
			opts:     Options{"f": nil, "o": "out.xtc"},
			wantArgs: []string{"-o", "out.xtc"},
		},
		{
			name:     "empty slice drops the flag",
			opts:     Options{"n": []string{}, "o": "out.xtc"},
			wantArgs: []string{"-o", "out.xtc"},
		},
		{
			name:     "flags sorted for reproducible command lines",
			opts:     Options{"s": "topol.tpr", "f": "traj.xtc", "o": "out.xtc"},
			wantArgs: []string{"-f", "traj.xtc", "-o", "out.xtc", "-s", "topol.tpr"},
		},
		{
			name:      "input goes to stdin",
			opts:      Options{"input": []string{"protein", "system"}, "s": "topol.tpr"},
			wantArgs:  []string{"-s", "topol.tpr"},
			wantStdin: "protein\nsystem\n",
		},
		{
			name:      "input as plain string",
			opts:      Options{"input": "q"},
			wantStdin: "q\n",
		},
		{
			name:     "mixed any slice",
			opts:     Options{"tu": []any{"ps", 10}},
			wantArgs: []string{"-tu", "ps", "10"},
		},
		{
			name: "empty options",
			opts: Options{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, stdin, err := buildArgs(tt.opts)
			if err != nil {
				t.Fatalf("buildArgs failed: %v", err)
			}
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
			if stdin != tt.wantStdin {
				t.Errorf("stdin = %q, want %q", stdin, tt.wantStdin)
			}
		})
	}
}

func TestBuildArgs_BadValues(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"unsupported type", Options{"f": struct{}{}}},
		{"unsupported slice element", Options{"n": []any{"a.ndx", struct{}{}}}},
		{"unsupported input", Options{"input": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := buildArgs(tt.opts)
			if !errors.Is(err, ErrBadOption) {
				t.Errorf("got error %v, want ErrBadOption", err)
			}
		})
	}
}

func TestOptions_Merged(t *testing.T) {
	defaults := Options{"f": "traj.xtc", "center": true}

	t.Run("override wins", func(t *testing.T) {
		got := defaults.merged(Options{"f": "other.xtc"})
		if got["f"] != "other.xtc" {
			t.Errorf("override lost: %v", got["f"])
		}
		if got["center"] != true {
			t.Errorf("default lost: %v", got["center"])
		}
	})

	t.Run("nil override disables a defaulted flag", func(t *testing.T) {
		got := defaults.merged(Options{"center": nil})
		args, _, err := buildArgs(got)
		if err != nil {
			t.Fatalf("buildArgs failed: %v", err)
		}
		if diff := cmp.Diff([]string{"-f", "traj.xtc"}, args); diff != "" {
			t.Errorf("args mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("defaults untouched", func(t *testing.T) {
		defaults.merged(Options{"f": "other.xtc"})
		if defaults["f"] != "traj.xtc" {
			t.Errorf("defaults mutated: %v", defaults["f"])
		}
	})
}
