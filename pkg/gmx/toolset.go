package gmx

import (
	"fmt"
	"path/filepath"

	"github.com/CTCNano/GromacsWrapper/internal/config"
)

// NewToolset builds a registry from the configured tool groups and
// external scripts.
//
// Every tool name in the groups yields one descriptor: the registry key
// comes from Identifier, the executable is the raw name plus the
// configured suffix. Tools listed under multi_index get the combined-index
// capability, but only when they actually appear in the groups. Scripts
// are registered as-is, bound to their configured path.
func NewToolset(cfg *config.Config, r Runner) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := NewRegistry(r)
	reg.SetMakeIndexTool("make_ndx" + cfg.Tools.Suffix)

	multiIndex := make(map[string]bool, len(cfg.Tools.MultiIndex))
	for _, name := range cfg.Tools.MultiIndex {
		multiIndex[name] = true
	}

	for _, group := range cfg.Tools.Groups {
		for _, name := range group {
			desc := ToolDescriptor{
				Name:       Identifier(name),
				Executable: name + cfg.Tools.Suffix,
				Doc:        fmt.Sprintf("Gromacs tool %q.", name),
				MultiIndex: multiIndex[name],
			}
			if err := reg.Register(desc); err != nil {
				return nil, err
			}
		}
	}

	for _, script := range cfg.Scripts {
		base := filepath.Base(script.Path)
		doc := fmt.Sprintf("External tool %q.", base)
		if script.Description != "" {
			doc += " " + script.Description
		}
		desc := ToolDescriptor{
			Name:       script.Name,
			Executable: script.Path,
			Doc:        doc,
		}
		if err := reg.Register(desc); err != nil {
			return nil, err
		}
	}

	return reg, nil
}
