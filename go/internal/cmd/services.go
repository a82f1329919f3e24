package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/songrival/go/internal/config"
	"github.com/mcdev12/songrival/go/internal/game"
	"github.com/mcdev12/songrival/go/internal/game/events"
	"github.com/mcdev12/songrival/go/internal/media"
	"github.com/mcdev12/songrival/go/internal/metrics"
	"github.com/mcdev12/songrival/go/internal/repository"
	"github.com/mcdev12/songrival/go/internal/telegram"
	"github.com/mcdev12/songrival/go/internal/wallet"
	"github.com/nats-io/nats.go"
)

type Services struct {
	App     *game.App
	Wallets *wallet.Service
	Bot     *telegram.Bot
}

func setupServices(
	ctx context.Context,
	cfg *config.Config,
	pool *pgxpool.Pool,
	nc *nats.Conn,
	m *metrics.Manager,
	clock clockwork.Clock,
	token string,
) (*Services, error) {
	// Database layer -> repositories -> engine -> front end.
	wallets := wallet.New(pool)
	games := repository.NewGameRepository(pool)
	songs := repository.NewSongRepository(pool)

	if err := os.MkdirAll(cfg.Bucket.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	bucket := media.NewBucketClient(cfg.Bucket.Endpoint)
	mediaStore := media.NewStore(songs, bucket, cfg.Bucket.TempDir)

	stakes, err := cfg.StakeTiers()
	if err != nil {
		return nil, err
	}
	feeRate, err := cfg.FeeRate()
	if err != nil {
		return nil, err
	}
	settler := game.NewSettler(wallets, feeRate, cfg.Game.FeeAddress)

	bot, err := telegram.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	appCfg := game.AppConfig{
		AnswerWindow: cfg.AnswerWindow(),
		WatchdogTick: cfg.WatchdogTick(),
		Retention:    cfg.Retention(),
		CountdownSec: cfg.Game.CountdownSec,
		Currency:     cfg.Game.Currency,
	}
	app := game.NewApp(
		ctx,
		appCfg,
		clock,
		stakes,
		settler,
		wallets,
		mediaStore,
		games,
		bot.Notifier(),
		events.NewPublisher(nc),
		m,
	)

	bot.Bind(app, wallets, stakes)

	return &Services{App: app, Wallets: wallets, Bot: bot}, nil
}
