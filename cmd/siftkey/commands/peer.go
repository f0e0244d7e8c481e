package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"siftkey/internal/app"
	"siftkey/internal/domain"
	"siftkey/internal/store"
	"siftkey/internal/transport"
)

// listenCmd waits for one inbound connection and runs the responder role.
func listenCmd() *cobra.Command {
	var keyFile string
	cmd := &cobra.Command{
		Use:   "listen <addr>",
		Short: "Run the responder role over TCP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ln, err := net.Listen("tcp", args[0])
			if err != nil {
				return err
			}
			defer ln.Close()
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			return runPeer(cmd, domain.Responder, conn, keyFile)
		},
	}
	cmd.Flags().StringVar(&keyFile, "key-file", "", "raw key material file (required)")
	_ = cmd.MarkFlagRequired("key-file")
	return cmd
}

// dialCmd connects to a listening peer and runs the initiator role.
func dialCmd() *cobra.Command {
	var keyFile string
	cmd := &cobra.Command{
		Use:   "dial <addr>",
		Short: "Run the initiator role over TCP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := net.Dial("tcp", args[0])
			if err != nil {
				return err
			}
			return runPeer(cmd, domain.Initiator, conn, keyFile)
		},
	}
	cmd.Flags().StringVar(&keyFile, "key-file", "", "raw key material file (required)")
	_ = cmd.MarkFlagRequired("key-file")
	return cmd
}

func runPeer(cmd *cobra.Command, role domain.Role, conn net.Conn, keyFile string) error {
	tr := transport.NewConn(conn)
	defer tr.Close()

	raw, err := store.LoadRawKey(keyFile)
	if err != nil {
		return err
	}
	res, err := app.Run(cmd.Context(), cfg, role, tr, raw, logger)
	if err != nil {
		return fmt.Errorf("session failed: %w", err)
	}
	logger.Info("session complete",
		zap.String("role", role.String()),
		zap.Int("length", res.Length),
		zap.Int("leakage", res.Leakage),
		zap.Float64("qber", res.QBER))
	fmt.Printf("secret key (%d bits): %x\n", res.Length, res.SecretKey.Pack())
	return nil
}
