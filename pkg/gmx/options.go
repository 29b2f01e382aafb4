package gmx

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Options holds keyword options for a tool invocation, keyed by the
// Gromacs flag name without the leading dash.
//
// Marshaling rules:
//   - "n": "index.ndx"          -> -n index.ndx
//   - "v": true                 -> -v
//   - "v": false                -> -nov
//   - "n": []string{"a", "b"}   -> -n a b
//   - "dt": 100                 -> -dt 100
//   - "input": []string{...}    -> fed to stdin, one entry per line
//
// A nil value drops the flag entirely, which lets presets switch options
// off per call.
type Options map[string]any

// InputKey is the reserved option that is sent to the tool's standard
// input instead of the command line (interactive group selections).
const InputKey = "input"

// merged returns defaults overlaid with overrides; override values win,
// including nil overrides that drop a defaulted flag.
func (o Options) merged(overrides Options) Options {
	out := make(Options, len(o)+len(overrides))
	for k, v := range o {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// buildArgs marshals options into argv and the stdin payload. Flags are
// emitted in sorted order so command lines are reproducible.
func buildArgs(opts Options) (args []string, stdin string, err error) {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		if k != InputKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := opts[key]
		if value == nil {
			continue
		}

		switch v := value.(type) {
		case bool:
			if v {
				args = append(args, "-"+key)
			} else {
				args = append(args, "-no"+key)
			}
		case []string:
			if len(v) == 0 {
				continue
			}
			args = append(args, "-"+key)
			args = append(args, v...)
		case []any:
			if len(v) == 0 {
				continue
			}
			args = append(args, "-"+key)
			for _, item := range v {
				s, err := scalar(item)
				if err != nil {
					return nil, "", fmt.Errorf("option %q: %w", key, err)
				}
				args = append(args, s)
			}
		default:
			s, err := scalar(v)
			if err != nil {
				return nil, "", fmt.Errorf("option %q: %w", key, err)
			}
			args = append(args, "-"+key, s)
		}
	}

	if raw, ok := opts[InputKey]; ok && raw != nil {
		stdin, err = inputLines(raw)
		if err != nil {
			return nil, "", err
		}
	}

	return args, stdin, nil
}

// scalar renders a single option value.
func scalar(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrBadOption, v)
	}
}

// inputLines renders the stdin payload from the reserved input option.
// Each entry becomes one line; a trailing newline terminates the last
// selection the way an interactive user would.
func inputLines(raw any) (string, error) {
	var lines []string
	switch v := raw.(type) {
	case string:
		lines = []string{v}
	case []string:
		lines = v
	case []any:
		for _, item := range v {
			s, err := scalar(item)
			if err != nil {
				return "", fmt.Errorf("option %q: %w", InputKey, err)
			}
			lines = append(lines, s)
		}
	default:
		return "", fmt.Errorf("option %q: %w: unsupported type %T", InputKey, ErrBadOption, raw)
	}
	if len(lines) == 0 {
		return "", nil
	}
	return strings.Join(lines, "\n") + "\n", nil
}
