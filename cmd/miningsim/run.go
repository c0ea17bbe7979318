package miningsim

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/shreekarashastry/miningsim/config"
	"github.com/shreekarashastry/miningsim/experiment"
	"github.com/shreekarashastry/miningsim/log"
	"github.com/shreekarashastry/miningsim/metrics"
	"github.com/shreekarashastry/miningsim/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type runOptions struct {
	scenarios   []string
	configFile  string
	iterations  int
	seed        int64
	storePath   string
	metricsAddr string
	parallel    int
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one or more experiments and print relative profit shares",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exps, err := loadExperiments(cmd, runOpts)
		if err != nil {
			return err
		}
		return runExperiments(cmd.Context(), cmd.OutOrStdout(), exps, runOpts)
	},
}

func init() {
	runCmd.Flags().StringSliceVarP(&runOpts.scenarios, "scenario", "s", nil, "Built-in scenario to run (repeatable)")
	runCmd.Flags().StringVarP(&runOpts.configFile, "config", "c", "", "Experiment file (yaml, json or toml)")
	runCmd.Flags().IntVarP(&runOpts.iterations, "iterations", "n", experiment.DefaultIterations, "Iterations per experiment")
	runCmd.Flags().Int64Var(&runOpts.seed, "seed", experiment.DefaultSeed, "Seed of the driver's random source")
	runCmd.Flags().StringVar(&runOpts.storePath, "store", "", "Directory of the report store; reports are not saved when empty")
	runCmd.Flags().StringVar(&runOpts.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address while running")
	runCmd.Flags().IntVarP(&runOpts.parallel, "parallel", "p", 1, "Experiments to run concurrently")
}

func loadExperiments(cmd *cobra.Command, opts runOptions) ([]config.Experiment, error) {
	var exps []config.Experiment
	if opts.configFile != "" {
		e, err := config.Load(opts.configFile)
		if err != nil {
			return nil, err
		}
		if e.Name == "" {
			e.Name = opts.configFile
		}
		exps = append(exps, e)
	}
	for _, name := range opts.scenarios {
		e, err := config.Scenario(name)
		if err != nil {
			return nil, err
		}
		exps = append(exps, e)
	}
	if len(exps) == 0 {
		return nil, errors.New("nothing to run: pass --scenario or --config")
	}
	for i := range exps {
		if cmd.Flags().Changed("iterations") {
			exps[i].Iterations = opts.iterations
		}
		if cmd.Flags().Changed("seed") {
			exps[i].Seed = opts.seed
		}
	}
	return exps, nil
}

func runExperiments(ctx context.Context, out io.Writer, exps []config.Experiment, opts runOptions) error {
	collector := metrics.NewCollector()
	if opts.metricsAddr != "" {
		srv := &http.Server{Addr: opts.metricsAddr, Handler: collector.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Global.WithError(err).Error("Metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	runners := make([]*experiment.Runner, len(exps))
	total := 0
	for i, e := range exps {
		r, err := experiment.FromConfig(e)
		if err != nil {
			return errors.WithMessagef(err, "experiment %q", e.Name)
		}
		runners[i] = r
		total += r.Config().Iterations
	}

	bar := progressbar.NewOptions(
		total,
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription("Simulating..."),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	if err := bar.RenderBlank(); err != nil {
		return errors.Wrap(err, "failed to render progress bar")
	}

	reports := make([]*experiment.Report, len(runners))
	eg, ctx := errgroup.WithContext(ctx)
	if opts.parallel > 0 {
		eg.SetLimit(opts.parallel)
	}
	for i, r := range runners {
		i, r := i, r
		eg.Go(func() error {
			report, err := runObserved(ctx, r, collector, bar)
			if err != nil {
				return errors.WithMessagef(err, "experiment %q", r.Config().Scenario)
			}
			reports[i] = report
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	if err := bar.Finish(); err != nil {
		return errors.Wrap(err, "failed to finish progress bar")
	}

	if opts.storePath != "" {
		st, err := store.NewBadgerStore(opts.storePath)
		if err != nil {
			return err
		}
		defer st.Close()
		for _, report := range reports {
			if err := st.SaveReport(report); err != nil {
				return errors.WithMessagef(err, "failed to save report %q", report.Scenario)
			}
		}
	}
	return printReports(out, reports)
}

// runObserved runs r while feeding its iteration events to the collector and
// the progress bar.
func runObserved(ctx context.Context, r *experiment.Runner, collector *metrics.Collector, bar *progressbar.ProgressBar) (*experiment.Report, error) {
	events := make(chan experiment.IterationEvent)
	sub := r.SubscribeIterations(events)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev := <-events:
				collector.ObserveIteration(ev)
				if err := bar.Add(1); err != nil {
					log.Global.WithError(err).Warn("Failed to update progress bar")
				}
			case <-sub.Err():
				return
			}
		}
	}()

	report, err := r.Run(ctx)
	sub.Unsubscribe()
	<-done
	if err != nil {
		return nil, err
	}
	collector.ObserveReport(report)
	return report, nil
}

func printReports(out io.Writer, reports []*experiment.Report) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, report := range reports {
		rate := 0.0
		if report.Mined > 0 {
			rate = float64(report.Orphaned) / float64(report.Mined)
		}
		fmt.Fprintf(w, "%s\tseed %d\t%d iterations\t%d blocks\torphan rate %.4f\n", report.Scenario, report.Seed, report.Iterations, report.Mined, rate)
		for _, id := range report.MinerIDs() {
			fmt.Fprintf(w, "\t%s\t%.2f%%\t%.2f\t%d orphaned\n", id, 100*report.Shares[id], report.Profits[id], report.Orphans[id])
		}
	}
	return w.Flush()
}
