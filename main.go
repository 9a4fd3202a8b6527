package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/walker/agent"
	"github.com/samuelfneumann/walker/environment/envconfig"
	"github.com/samuelfneumann/walker/experiment"
	"github.com/samuelfneumann/walker/render"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML experiment "+
			"configuration, defaults are used if empty")
		policy   = flag.String("policy", string(agent.HeuristicType), "policy: uniform or heuristic")
		period   = flag.Int("period", 50, "gait period in steps of the heuristic policy")
		steps    = flag.Int("steps", 5000, "steps to run each instance for")
		parallel = flag.Int("parallel", 0, "instances run at once, all if not positive")
		out      = flag.String("out", "", "directory to save tracked data to")
		snapshot = flag.String("snapshot", "", "directory to save a final PNG snapshot of each instance to")
		debug    = flag.Bool("debug", false, "log at debug level")
	)
	flag.Parse()

	if err := run(*configPath, agent.Config{Type: agent.Type(*policy),
		Period: *period}, *steps, *parallel, *out, *snapshot,
		*debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, p agent.Config, steps, parallel int, out,
	snapshot string, debug bool) error {
	var logger *zap.Logger
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("run: could not create logger: %v", err)
	}
	defer logger.Sync()

	c := envconfig.Default()
	if configPath != "" {
		if c, err = envconfig.LoadFile(configPath); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}

	for _, dir := range []string{out, snapshot} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("run: %v", err)
		}
	}

	g, err := experiment.NewGrid(c, p, steps, parallel, out, logger)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := g.Run(ctx)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	for _, res := range results {
		var mean float64
		if len(res.Returns) > 0 {
			mean = stat.Mean(res.Returns, nil)
		}
		logger.Info("result",
			zap.String("instance", res.ID.String()),
			zap.Int("episodes", res.Episodes),
			zap.Float64("mean_return", mean))

		if snapshot == "" {
			continue
		}
		path := filepath.Join(snapshot, res.ID.String()+".png")
		err := render.SavePNG(path, res.Instance.World, render.Options{
			Heading: res.Instance.Ragdoll.Frame().Forward(),
		})
		if err != nil {
			return fmt.Errorf("run: %v", err)
		}
	}
	return nil
}
