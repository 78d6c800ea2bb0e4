package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/PerchunPak/nonbloat-db/internal/cli/output"
	"github.com/PerchunPak/nonbloat-db/internal/infra/buildinfo"
	"github.com/PerchunPak/nonbloat-db/internal/storage"
	"github.com/PerchunPak/nonbloat-db/internal/telemetry/metric"
)

// statsReport is the json and yaml shape of the stats command.
type statsReport struct {
	Store   storage.Stats   `json:"store" yaml:"store"`
	Metrics []metric.Sample `json:"metrics" yaml:"metrics"`
}

// StatsCommand reports store state and the counters of this run.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show store statistics and recovery counters",
		Action: func(c *cli.Context) error {
			reg := prometheus.NewRegistry()
			return withStore(c, func(_ context.Context, env *Env, store *storage.Engine) error {
				stats := store.Stats()
				samples, err := metric.Gather(reg, "nbdb_")
				if err != nil {
					return fmt.Errorf("gather metrics: %w", err)
				}

				if env.Format != output.FormatTable {
					return env.Print(statsReport{Store: stats, Metrics: samples})
				}

				if err := env.Print(&stats); err != nil {
					return err
				}
				fmt.Fprintln(env.Out)
				t := &output.Table{Headers: []string{"METRIC", "LABELS", "VALUE"}}
				for _, s := range samples {
					labels := s.LabelString()
					if labels == "" {
						labels = "-"
					}
					t.AddRow(s.Name, labels, strconv.FormatFloat(s.Value, 'g', -1, 64))
				}
				return env.Print(t)
			}, storage.WithRegisterer(reg))
		},
	}
}

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			env, err := envFrom(c)
			if err != nil {
				return err
			}
			info := buildinfo.Get()
			return env.Print(&info)
		},
	}
}
