package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/colour"
	glog "github.com/golang/glog"
	"github.com/google/subcommands"
	"github.com/mahdiidarabi/rsa-factor/pkg/rsafactor"
	"github.com/montanaflynn/stats"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// benchCmd runs every default strategy on its own against one modulus and
// reports timing statistics.
type benchCmd struct {
	commonFlags
	n    string
	runs int
}

func (*benchCmd) Name() string { return "bench" }
func (*benchCmd) Synopsis() string {
	return "times each strategy separately against a modulus"
}
func (*benchCmd) Usage() string {
	return `Usage: rsarecover bench [--config=<config_file>] [--runs=<k>] (--n=<N> | <N>)

Example:
  $ rsarecover bench --runs=10 95415840271548966209

Flags:
`
}
func (b *benchCmd) SetFlags(f *flag.FlagSet) {
	b.register(f)
	f.StringVar(&b.n, "n", "", "Modulus N to factor.")
	f.IntVar(&b.runs, "runs", 5, "Runs per strategy.")
}

// strategyStats accumulates the runs of one strategy.
type strategyStats struct {
	name     string
	millis   []float64
	outcomes map[string]int
}

func (b *benchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	n, err := modulusArg(b.n, f)
	if err != nil {
		glog.Errorf("Failed to parse modulus: %v", err)
		return subcommands.ExitUsageError
	}
	if n.BitLen() < 3 || b.runs < 1 {
		glog.Errorf("Need N >= 4 and --runs >= 1")
		return subcommands.ExitUsageError
	}
	cfg, err := b.load(f)
	if err != nil {
		glog.Errorf("Failed to load config: %v", err)
		return subcommands.ExitFailure
	}
	// Each strategy must do its own work.
	cfg.CacheDir = ""
	cfg.Parallel = false

	var all []*strategyStats
	for _, s := range rsafactor.DefaultStrategies(cfg, nil) {
		st := &strategyStats{name: s.Name(), outcomes: map[string]int{}}
		o := rsafactor.NewOrchestrator(cfg).WithStrategies(s)
		for i := 0; i < b.runs; i++ {
			if ctx.Err() != nil {
				return subcommands.ExitFailure
			}
			res, _ := o.Run(ctx, n)
			if res == nil || len(res.Attempts) == 0 {
				continue
			}
			a := res.Attempts[0]
			st.millis = append(st.millis, float64(a.Elapsed)/float64(time.Millisecond))
			st.outcomes[a.Outcome.String()]++
		}
		all = append(all, st)
	}

	fmt.Printf("%d-bit modulus, %d runs per strategy\n", n.BitLen(), b.runs)
	fmt.Printf("%-15s %10s %10s %10s  %s\n", "strategy", "mean ms", "median ms", "stddev", "outcomes")
	for _, st := range all {
		printStrategyStats(st)
	}
	return subcommands.ExitSuccess
}

func printStrategyStats(st *strategyStats) {
	mean, _ := stats.Mean(st.millis)
	median, _ := stats.Median(st.millis)
	stddev, _ := stats.StandardDeviation(st.millis)

	keys := maps.Keys(st.outcomes)
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, st.outcomes[k]))
	}

	marker := "^1"
	if st.outcomes[rsafactor.OutcomeFound.String()] > 0 {
		marker = "^2"
	}
	colour.Printf(marker+"%-15s^R %10.3f %10.3f %10.3f  %s\n", st.name, mean, median, stddev, strings.Join(parts, " "))
}
