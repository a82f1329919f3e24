// Package telegram is the chat front end: it routes Telegram updates into the
// game engine and renders the engine's replies. No game logic lives here.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mcdev12/songrival/go/internal/game"
	"github.com/mcdev12/songrival/go/internal/wallet"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Bot owns the Telegram update loop.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
}

// NewBot dials the Telegram API. The engine is attached afterwards with Bind,
// because the engine itself needs this bot's Notifier.
func NewBot(token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Bot{api: api}, nil
}

// Bind attaches the engine and wallet service. Must be called before Run.
func (b *Bot) Bind(app *game.App, wallets *wallet.Service, stakes []decimal.Decimal) {
	b.handler = NewHandler(b.api, app, wallets)
	b.handler.SetStakes(stakes)
}

// Notifier returns the notifier bound to this bot's API client.
func (b *Bot) Notifier() *Notifier {
	return NewNotifier(b.api)
}

// Run consumes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	log.Info().Str("username", b.api.Self.UserName).Msg("telegram bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Info().Msg("telegram bot stopped")
			return
		case update := <-updates:
			switch {
			case update.CallbackQuery != nil:
				b.handler.HandleCallback(ctx, update.CallbackQuery)
			case update.Message != nil:
				b.handler.HandleMessage(ctx, update.Message)
			}
		}
	}
}
