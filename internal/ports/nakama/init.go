package nakama

import (
	"context"
	"database/sql"

	"gostop/internal/bot"
	"gostop/internal/config"
	"gostop/internal/logger"

	"github.com/heroiclabs/nakama-common/runtime"
	"go.uber.org/zap"
)

const (
	gameConfigPath  = "data/game_config.yaml"
	botIdentityPath = "data/bot_identities.json"
)

// InitModule wires RPCs, hooks and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()

	zlog, err := newAppLogger(cfg)
	if err != nil {
		logger.Warn("InitModule: Could not build app logger, app logs disabled: %v", err)
		zlog = zap.NewNop()
	}

	if err := bot.LoadIdentities(botIdentityPath); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	}

	mh := newMatchHandler(cfg, zlog)

	if err := initializer.RegisterRpc(RpcQuickMatch, mh.rpcQuickMatch); err != nil {
		return err
	}
	if err := initializer.RegisterAfterAuthenticateDevice(mh.afterAuthenticateDevice); err != nil {
		return err
	}
	if err := initializer.RegisterMatch(MatchNameGoStop, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return mh, nil
	}); err != nil {
		return err
	}

	logger.Info("Go-Stop module loaded (tier=%s, seats=%d, deals=%d).", cfg.DefaultTier, cfg.MaxSeats, cfg.TotalDeals)
	return nil
}

func newAppLogger(cfg *config.GameConfig) (*zap.Logger, error) {
	return logger.New(cfg.Log)
}
