package main

import (
	"fmt"
	"strconv"

	"github.com/hupe1980/kpalette"
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kpalette <input> <output> [k]",
		Short: "Reduce an image to k colors with k-means clustering",
		Long: `Clusters the colors of the input image into k groups (default 8) and writes
an image where every pixel has the color of its cluster.

Inputs and outputs may be local paths, s3://bucket/key or
minio://host:port/bucket/key. The output format follows the extension.`,
		Version:       version,
		Args:          cobra.RangeArgs(2, 3),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, args[2:])
			if err != nil {
				return err
			}
			_, err = newQuantizer(cfg, logger, cmd.OutOrStdout()).Run(cmd.Context(), args[0], args[1])
			return err
		},
	}

	addPersistentFlags(rootCmd)
	rootCmd.AddCommand(NewWatchCmd())

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "YAML config file")
	f.Int("max-iterations", kpalette.DefaultMaxIterations, "Maximum assign/update passes")
	f.Float64("epsilon", kpalette.DefaultEpsilon, "Convergence threshold on centroid movement")
	f.Uint64("seed", 0, "Seed for centroid initialization (default: wall clock)")
	f.String("empty-cluster", kpalette.HoldPrevious.String(), "Empty cluster policy (hold|reseed)")
	f.Int("workers", 1, "Parallel shards per pass")
	f.String("frames", "", "Write output_<i>.png for every non-converged pass to this directory")
	f.String("report", "", "Write a palette report (.json, .yaml, optionally .zst or .lz4)")
	f.IntSlice("isolate", nil, "Render only these clusters, others transparent")
	f.String("log-level", "info", "Log level (debug|info|warn|error)")
	f.String("log-format", "text", "Log format (text|json)")
}

// setup loads the config, applies flags and the optional k argument, and
// builds the logger.
func setup(cmd *cobra.Command, kArg []string) (*Config, *kpalette.Logger, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	cfg.applyEnv()
	if err := cfg.applyFlags(cmd); err != nil {
		return nil, nil, err
	}

	if len(kArg) > 0 {
		k, err := parseK(kArg[0])
		if err != nil {
			return nil, nil, err
		}
		cfg.K = k
	}
	if cfg.K < 2 {
		return nil, nil, kpalette.ErrInvalidK
	}

	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

func parseK(s string) (int, error) {
	k, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("k must be an integer, got %q", s)
	}
	return k, nil
}
