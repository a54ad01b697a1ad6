package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zjrosen/prism/internal/app"
	"github.com/zjrosen/prism/internal/graph"
	"github.com/zjrosen/prism/internal/projection"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cycleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Enumerate the cycles of the snapshot's graph chunk",
	Long: `Compute the cycles projection and print every simple cycle found in
the snapshot's graph chunk, one per line, smallest member first.

Example:
  prism cycles
  prism cycles -s fixtures/snapshot.yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		result, ok, err := projection.ValueOf[graph.Result](cmd.Context(), eng.registry, app.ProjectionCycles)
		if err != nil {
			return fmt.Errorf("computing cycles: %w", err)
		}
		if !ok || result.Count == 0 {
			fmt.Println(okStyle.Render("No cycles found"))
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%d cycle(s)", result.Count)))
		for _, cycle := range result.Cycles {
			fmt.Printf("  %s\n", cycleStyle.Render(strings.Join(cycle, " -> ")))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cyclesCmd)
}
