package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	idStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List registered projections",
	Long: `List every registered projection id with the chunks it depends on.

Example:
  prism ls
  prism ls -s fixtures/snapshot.yaml`,
	RunE: func(_ *cobra.Command, _ []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		fmt.Println(headerStyle.Render("Projections"))
		for _, id := range eng.registry.List() {
			depends := eng.registry.Depends(id)
			parts := make([]string, len(depends))
			for i, d := range depends {
				parts[i] = string(d)
			}
			fmt.Printf("  %s %s\n",
				idStyle.Render(id),
				dimStyle.Render("("+strings.Join(parts, ", ")+")"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
