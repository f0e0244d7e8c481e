package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"siftkey/internal/auth"
)

// keygenCmd prints a fresh pre-shared authentication key. Distribute it to
// both parties out of band.
func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a pre-shared authentication key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := auth.NewKey()
			if err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(key))
			return nil
		},
	}
}
