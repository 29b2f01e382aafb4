// Command gmx drives the wrapped Gromacs tools from the shell: it lists
// the registered tools, shows their bindings, and runs one with keyword
// options instead of raw flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/CTCNano/GromacsWrapper/internal/config"
	"github.com/CTCNano/GromacsWrapper/internal/logging"
	"github.com/CTCNano/GromacsWrapper/pkg/gmx"
	"github.com/CTCNano/GromacsWrapper/pkg/runner"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Run flags
	runOptions []string
	runInputs  []string
	runTimeout time.Duration
	runDir     string

	// Built in PersistentPreRunE
	cfg      *config.Config
	registry *gmx.Registry

	// Exit code of the wrapped tool, propagated by main.
	toolExitCode int
)

var rootCmd = &cobra.Command{
	Use:   "gmx",
	Short: "Keyword-option wrapper around the Gromacs command-line tools",
	Long: `gmx wraps the external Gromacs tools so they can be invoked with
keyword options instead of raw command lines. The tool list, the
executable suffix and any extra scripts come from the configuration file.

Tools that cannot read more than one index file natively (g_mindist,
g_dist) transparently accept several: the files are combined into one
temporary index file via make_ndx before the tool runs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := logging.Init(cfg.Logging); err != nil {
			return err
		}

		run := runner.NewDirectWithConfig(runner.Config{
			DefaultWorkingDir:  cfg.Execution.WorkingDirectory,
			DefaultTimeout:     cfg.GetExecutionTimeout(),
			AllowedEnvironment: cfg.Execution.AllowedEnvVars,
			MaxOutputBytes:     cfg.Execution.MaxOutputBytes,
		})
		registry, err = gmx.NewToolset(cfg, run)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, desc := range registry.All() {
			marker := " "
			if desc.MultiIndex {
				marker = "*"
			}
			fmt.Printf("%s %-16s %s\n", marker, desc.Name, desc.Executable)
		}
		fmt.Printf("\n%d tools (* = combined-index emulation)\n", registry.Count())
		return nil
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe [tool]",
	Short: "Show one tool's binding and help text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, ok := registry.Get(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", gmx.ErrToolNotFound, args[0])
		}
		fmt.Printf("Name:        %s\n", desc.Name)
		fmt.Printf("Executable:  %s\n", desc.Executable)
		fmt.Printf("Multi-index: %v\n", desc.MultiIndex)
		fmt.Printf("Doc:         %s\n", desc.Doc)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run [tool]",
	Short: "Run a tool with keyword options",
	Long: `Runs a registered tool. Options are given as repeatable -o key=value
flags; comma-separated values become file lists, so a combined-index tool
takes several index files as -o n=a.ndx,b.ndx. Interactive group
selections go in via --input.

Example:
  gmx run Trjconv -o f=traj.xtc -o o=out.xtc -o ur=compact --input protein`,
	Args: cobra.ExactArgs(1),
	RunE: runTool,
}

func runTool(cmd *cobra.Command, args []string) error {
	opts, err := parseOptions(runOptions)
	if err != nil {
		return err
	}
	if len(runInputs) > 0 {
		opts[gmx.InputKey] = runInputs
	}

	tool, err := registry.New(args[0], nil)
	if err != nil {
		return err
	}
	if runDir != "" {
		tool = tool.InDir(runDir)
	}
	defer tool.Cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if runTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	res, err := tool.Run(ctx, opts)
	if res != nil {
		fmt.Print(res.Stdout)
		if res.Stderr != "" {
			fmt.Fprint(os.Stderr, res.Stderr)
		}
	}
	if err != nil {
		if errors.Is(err, gmx.ErrToolFailed) && res != nil {
			toolExitCode = res.ExitCode
		}
		return err
	}
	return nil
}

// parseOptions turns repeatable key=value flags into tool options.
// Comma-separated values become lists, "true"/"false" become switches,
// everything else stays a string (the tool parses its own numbers).
func parseOptions(pairs []string) (gmx.Options, error) {
	opts := make(gmx.Options, len(pairs))
	for _, pair := range pairs {
		key, value, ok := cutPair(pair)
		if !ok {
			return nil, fmt.Errorf("option %q is not key=value", pair)
		}
		switch {
		case value == "true":
			opts[key] = true
		case value == "false":
			opts[key] = false
		default:
			if list := splitList(value); len(list) > 1 {
				opts[key] = list
			} else {
				opts[key] = value
			}
		}
	}
	return opts, nil
}

func cutPair(s string) (key, value string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], i > 0
		}
	}
	return "", "", false
}

func splitList(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "gmxwrap.yaml", "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd.Flags().StringArrayVarP(&runOptions, "opt", "o", nil, "tool option as key=value (repeatable)")
	runCmd.Flags().StringArrayVar(&runInputs, "input", nil, "interactive group selection fed to stdin (repeatable)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "override the configured timeout")
	runCmd.Flags().StringVar(&runDir, "dir", "", "working directory for the tool")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if toolExitCode != 0 {
			os.Exit(toolExitCode)
		}
		os.Exit(1)
	}
}
