package cmd

import (
	"fmt"
	"maps"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/prism/internal/config"
	"github.com/zjrosen/prism/internal/flags"
)

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Show feature flag state",
	Long: `Show every feature flag and whether it is enabled.

Known flags:
  mutation-guard  fingerprint cached results and panic on external mutation
  auto-reload     reload the snapshot when the file changes`,
	RunE: func(_ *cobra.Command, _ []string) error {
		names := make([]string, 0, len(cfg.Flags))
		for name := range cfg.Flags {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			state := dimStyle.Render("off")
			if cfg.Flags[name] {
				state = okStyle.Render("on")
			}
			fmt.Printf("  %s %s\n", idStyle.Render(name), state)
		}
		return nil
	},
}

var flagsSetCmd = &cobra.Command{
	Use:   "flags:set <name> <true|false>",
	Short: "Persist a feature flag to the config file",
	Long: `Set a feature flag and write it back to the config file, preserving
the file's comments and unrelated settings.

Example:
  prism flags:set mutation-guard true`,
	Args: cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		name := args[0]
		if name != flags.FlagMutationGuard && name != flags.FlagAutoReload {
			return fmt.Errorf("unknown flag %q", name)
		}
		value, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("flag value must be true or false, got %q", args[1])
		}

		updated := make(map[string]bool, len(cfg.Flags)+1)
		maps.Copy(updated, cfg.Flags)
		updated[name] = value

		path := configFilePath()
		if err := config.SaveFlags(path, updated); err != nil {
			return fmt.Errorf("saving flags: %w", err)
		}
		fmt.Printf("%s = %v (written to %s)\n", name, value, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flagsCmd)
	rootCmd.AddCommand(flagsSetCmd)
}
