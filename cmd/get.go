package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var getCmd = &cobra.Command{
	Use:   "get <projection-id>",
	Short: "Compute a projection and print its value",
	Long: `Compute the named projection against the current snapshot and print
the result as YAML. The value comes from cache when the chunks the
projection depends on have not changed since the last compute.

Example:
  prism get entity-list
  prism get chunk-index -s fixtures/snapshot.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		id := args[0]
		value, err := eng.registry.Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("computing %s: %w", id, err)
		}
		if value == nil {
			return fmt.Errorf("unknown projection %q (try 'prism ls')", id)
		}

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close() //nolint:errcheck
		return enc.Encode(value)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
