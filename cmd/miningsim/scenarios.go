package miningsim

import (
	"fmt"
	"text/tabwriter"

	"github.com/shreekarashastry/miningsim/config"
	"github.com/spf13/cobra"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the built-in scenarios",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tMINERS\tDESCRIPTION")
		for _, name := range config.ScenarioNames() {
			e, err := config.Scenario(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%d\t%s\n", name, len(e.Miners), e.Description)
		}
		return w.Flush()
	},
}
