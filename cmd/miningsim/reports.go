package miningsim

import (
	"github.com/pkg/errors"
	"github.com/shreekarashastry/miningsim/experiment"
	"github.com/shreekarashastry/miningsim/store"
	"github.com/spf13/cobra"
)

var (
	reportsStorePath string
	reportsScenario  string
	reportsSeed      int64
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Show reports saved by previous runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportsStorePath == "" {
			return errors.New("--store is required")
		}
		st, err := store.NewBadgerStore(reportsStorePath)
		if err != nil {
			return err
		}
		defer st.Close()

		var reports []*experiment.Report
		if reportsScenario != "" {
			r, err := st.GetReport(reportsScenario, reportsSeed)
			if err != nil {
				return err
			}
			reports = append(reports, r)
		} else {
			reports, err = st.ListReports()
			if err != nil {
				return err
			}
		}
		return printReports(cmd.OutOrStdout(), reports)
	},
}

func init() {
	reportsCmd.Flags().StringVar(&reportsStorePath, "store", "", "Directory of the report store")
	reportsCmd.Flags().StringVar(&reportsScenario, "scenario", "", "Only show this scenario")
	reportsCmd.Flags().Int64Var(&reportsSeed, "seed", experiment.DefaultSeed, "Seed of the report to show with --scenario")
}
