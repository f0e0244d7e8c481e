package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"siftkey/internal/app"
)

// simulateCmd runs both roles in-process over an in-memory pipe with
// synthetic bit-flip noise standing in for the quantum channel, and
// tabulates outcomes across trials.
func simulateCmd() *cobra.Command {
	opts := app.SimOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run end-to-end trials in one process",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.AuthKeyHex == "" {
				// Simulation runs both parties locally, so a throwaway
				// key is fine when none was supplied.
				cfg.AuthKeyHex = "00112233445566778899aabbccddeeff"
			}
			stats, err := app.Simulate(cmd.Context(), cfg, opts, logger)
			if err != nil {
				return err
			}
			fmt.Printf("trials:        %d\n", stats.Trials)
			fmt.Printf("successes:     %d\n", stats.Successes)
			for kind, n := range stats.Aborts {
				fmt.Printf("abort[%s]: %d\n", kind, n)
			}
			if stats.Successes > 0 {
				fmt.Printf("mean key bits: %.1f\n", stats.MeanKeyLength())
				fmt.Printf("mean QBER:     %.4f\n", stats.MeanQBER)
				fmt.Printf("mean leakage:  %.1f bits\n", stats.MeanLeak)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Trials, "trials", 10, "number of independent runs")
	cmd.Flags().IntVar(&opts.RawBits, "bits", 2000, "raw key length per trial")
	cmd.Flags().Float64Var(&opts.NoiseRate, "noise", 0.05, "per-bit flip probability between the raw keys")
	cmd.Flags().Float64Var(&opts.SampleFraction, "sample", 0.2, "fraction of bits sacrificed for estimation")
	cmd.Flags().Uint64Var(&opts.RNGSeed, "rng-seed", 0, "noise RNG seed (0 = nondeterministic)")
	return cmd
}
