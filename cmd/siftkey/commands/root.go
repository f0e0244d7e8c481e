package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"siftkey/internal/app"
	"siftkey/internal/session"
)

var (
	cfg     app.Config
	verbose bool
	logger  *zap.Logger
)

func Execute() error {
	defaults := session.DefaultParams()

	root := &cobra.Command{
		Use:   "siftkey",
		Short: "Distill a shared secret key from two noisy raw bit strings",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if verbose {
				logger, err = zap.NewDevelopment()
			} else {
				logger, err = zap.NewProduction()
			}
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&cfg.AuthKeyHex, "auth-key", "", "pre-shared authentication key (hex, >= 16 bytes)")
	root.PersistentFlags().Uint64Var(&cfg.Params.Seed, "seed", defaults.Seed, "shared permutation seed")
	root.PersistentFlags().IntVar(&cfg.Params.Passes, "passes", defaults.Passes, "number of Cascade passes")
	root.PersistentFlags().Float64Var(&cfg.Params.QBERThreshold, "qber-threshold", defaults.QBERThreshold, "abort when the sampled error estimate reaches this")
	root.PersistentFlags().IntVar(&cfg.Params.MinKeyLength, "min-key-length", defaults.MinKeyLength, "minimum viable final key length")
	root.PersistentFlags().Float64Var(&cfg.Params.Epsilon, "epsilon", defaults.Epsilon, "security parameter epsilon_sec")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development logging")

	root.AddCommand(simulateCmd(), listenCmd(), dialCmd(), keygenCmd())
	return root.Execute()
}
