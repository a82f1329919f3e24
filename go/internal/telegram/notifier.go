package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mcdev12/songrival/go/internal/game"
	"github.com/mcdev12/songrival/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Notifier delivers engine messages over Telegram. Deliveries are
// fire-and-forget: the engine never sees a failed send.
type Notifier struct {
	api *tgbotapi.BotAPI
}

func NewNotifier(api *tgbotapi.BotAPI) *Notifier {
	return &Notifier{api: api}
}

func (n *Notifier) Notify(ctx context.Context, player models.PlayerID, text string) {
	msg := tgbotapi.NewMessage(int64(player), text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	n.send(msg, player)
}

func (n *Notifier) NotifyWithChoices(ctx context.Context, player models.PlayerID, text string, choices []game.Choice) {
	rows := make([][]tgbotapi.InlineKeyboardButton, len(choices))
	for i, c := range choices {
		rows[i] = tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Label, "answer_"+c.Data),
		)
	}
	msg := tgbotapi.NewMessage(int64(player), text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	n.send(msg, player)
}

func (n *Notifier) SendAudio(ctx context.Context, player models.PlayerID, path string) {
	voice := tgbotapi.NewVoice(int64(player), tgbotapi.FilePath(path))
	if _, err := n.api.Send(voice); err != nil {
		log.Error().Err(err).Int64("player", int64(player)).Str("path", path).Msg("failed to send audio")
	}
}

func (n *Notifier) send(msg tgbotapi.MessageConfig, player models.PlayerID) {
	if _, err := n.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("player", int64(player)).Msg("failed to send message")
	}
}
