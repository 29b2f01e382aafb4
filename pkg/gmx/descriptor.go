// Package gmx wraps the external Gromacs command-line tools so each tool
// can be driven as a Go object with keyword options instead of a raw shell
// command.
//
// Every wrapped tool is described by a static ToolDescriptor held in a
// Registry; Registry.New binds a descriptor to a Command that marshals
// options into a command line and delegates execution to a Runner
// (pkg/runner provides the host implementation). Tools that cannot read
// more than one index file natively carry the MultiIndex capability, which
// transparently combines several index files into one temporary file before
// the tool runs.
//
// A typical session:
//
//	reg, _ := gmx.NewToolset(config.Default(), runner.NewDirect())
//	trjconv, _ := reg.New("Trjconv")
//	compact := trjconv.With(gmx.Options{
//		"ur": "compact", "center": true, "pbc": "mol",
//		"input": []string{"protein", "system"},
//	})
//	res, err := compact.Run(ctx, gmx.Options{"f": "traj.xtc", "o": "out.xtc"})
package gmx

import (
	"strings"
	"unicode"
)

// ToolDescriptor statically describes one wrapped external tool.
type ToolDescriptor struct {
	// Name is the registry key, derived from the tool name by Identifier.
	Name string

	// Executable is the external binary to invoke (tool name plus the
	// configured suffix, or a script path).
	Executable string

	// Doc is a one-line help text.
	Doc string

	// MultiIndex marks tools that get the combined-index emulation
	// because they cannot read more than one index file themselves.
	MultiIndex bool
}

// Validate checks the descriptor before registration.
func (d ToolDescriptor) Validate() error {
	if d.Name == "" {
		return ErrToolNameEmpty
	}
	if d.Executable == "" {
		return ErrToolExecutableEmpty
	}
	return nil
}

// Identifier derives the registry key for a tool name: dots and dashes
// become underscores and the first rune is upper-cased, following the
// naming convention of the original wrapper ("g_dist" -> "G_dist",
// "demux.pl" -> "Demux_pl").
func Identifier(name string) string {
	s := strings.NewReplacer(".", "_", "-", "_").Replace(name)
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
