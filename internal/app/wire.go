package app

import (
	"context"

	"go.uber.org/zap"

	"siftkey/internal/auth"
	"siftkey/internal/domain"
	"siftkey/internal/session"
)

// Run executes one session for the given role over the transport, wiring the
// authenticated channel and orchestrator from cfg.
func Run(ctx context.Context, cfg Config, role domain.Role, transport domain.Transport, raw domain.RawKey, logger *zap.Logger) (domain.Result, error) {
	key, err := cfg.AuthKey()
	if err != nil {
		return domain.Result{}, err
	}
	channel := auth.NewChannel(transport, key)
	orch := session.New(channel, cfg.Params, logger)
	return orch.Run(ctx, role, raw)
}
