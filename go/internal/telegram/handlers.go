package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mcdev12/songrival/go/internal/game"
	"github.com/mcdev12/songrival/go/internal/models"
	"github.com/mcdev12/songrival/go/internal/wallet"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const rulesText = "*Rules*:\n\n" +
	"*Song Rival* is a game where you compete with other players to guess the song as fast as you can.\n\n" +
	"*1)* First, you gotta deposit some BNB to your wallet. You can skip this step if you want to play free games\n" +
	"*2)* Now you can start matchmaking. Select a bet amount and wait for a rival to compete against.\n" +
	"*3)* You will be sent a song. Listen to it and guess the song title.\n" +
	"*4)* If none of the players answer correctly, it's a draw. If one of the players answers correctly, they win the bet.\n" +
	"*5)* You have 120 seconds to answer. If you don't answer in time, you can't win. If both of you time out, it's a draw.\n" +
	"*6)* You can withdraw your earnings to your wallet anytime."

// withdrawState tracks one chat's progress through the withdraw conversation.
type withdrawState struct {
	address string
}

// Handler routes updates to the engine and the wallet service.
type Handler struct {
	api     *tgbotapi.BotAPI
	app     *game.App
	wallets *wallet.Service
	stakes  []decimal.Decimal

	mu          sync.Mutex
	withdrawing map[int64]*withdrawState
}

func NewHandler(api *tgbotapi.BotAPI, app *game.App, wallets *wallet.Service) *Handler {
	return &Handler{
		api:         api,
		app:         app,
		wallets:     wallets,
		withdrawing: make(map[int64]*withdrawState),
	}
}

// SetStakes configures the bet keyboard.
func (h *Handler) SetStakes(stakes []decimal.Decimal) {
	h.stakes = stakes
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		h.clearWithdraw(chatID)
		h.sendMenu(chatID)
		return
	case "rules":
		h.clearWithdraw(chatID)
		h.reply(chatID, rulesText)
		return
	case "deposit":
		h.clearWithdraw(chatID)
		h.handleDeposit(ctx, chatID)
		return
	case "withdraw":
		h.handleWithdraw(ctx, chatID)
		return
	}

	// Plain text only matters mid-withdraw.
	h.continueWithdraw(ctx, chatID, strings.TrimSpace(msg.Text))
}

func (h *Handler) HandleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := h.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Warn().Err(err).Msg("failed to ack callback query")
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case data == "start":
		h.sendMenu(chatID)
	case data == "rules":
		h.reply(chatID, rulesText)
	case data == "race":
		h.sendBetKeyboard(chatID)
	case data == "deposit":
		h.handleDeposit(ctx, chatID)
	case data == "withdraw":
		h.handleWithdraw(ctx, chatID)
	case data == "stop":
		if h.app.CancelMatchmaking(models.PlayerID(chatID)) {
			h.reply(chatID, "Matchmaking stopped.")
		} else {
			h.reply(chatID, "You are not in a matchmaking pool.")
		}
	case strings.HasPrefix(data, "bet_"):
		h.handleBet(ctx, chatID, strings.TrimPrefix(data, "bet_"))
	case strings.HasPrefix(data, "answer_"):
		h.handleAnswer(ctx, chatID, strings.TrimPrefix(data, "answer_"))
	}
}

func (h *Handler) handleBet(ctx context.Context, chatID int64, raw string) {
	stake, err := decimal.NewFromString(raw)
	if err != nil {
		h.reply(chatID, "Invalid bet amount.")
		return
	}

	result, err := h.app.JoinMatchmaking(ctx, models.PlayerID(chatID), stake)
	if err != nil {
		h.reply(chatID, joinErrorText(err))
		return
	}

	if !result.Matched {
		msg := tgbotapi.NewMessage(chatID, "Matchmaking... Please wait.")
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Stop Matchmaking", "stop"),
			),
		)
		h.send(msg)
	}
	// On a match the engine notifies both players itself.
}

func (h *Handler) handleAnswer(ctx context.Context, chatID int64, choiceID string) {
	err := h.app.SubmitAnswer(ctx, models.PlayerID(chatID), choiceID)
	if err == nil {
		return
	}
	h.reply(chatID, answerErrorText(err))
}

func (h *Handler) handleDeposit(ctx context.Context, chatID int64) {
	address, err := h.wallets.DepositAddress(ctx, models.PlayerID(chatID))
	if err != nil {
		log.Error().Err(err).Int64("chat", chatID).Msg("failed to resolve deposit address")
		h.reply(chatID, "Something went wrong. Please try again later.")
		return
	}
	h.reply(chatID, "Your deposit address is:\n`"+address+"`\n\nSend *BNB* to this address to deposit to your wallet.")
}

func (h *Handler) handleWithdraw(ctx context.Context, chatID int64) {
	player := models.PlayerID(chatID)

	if _, active := h.app.Directory().ActiveByPlayer(player); active {
		h.reply(chatID, "You cannot withdraw while in a game.")
		return
	}

	balance, err := h.wallets.Balance(ctx, player)
	if err != nil {
		log.Error().Err(err).Int64("chat", chatID).Msg("failed to read balance")
		h.reply(chatID, "Something went wrong. Please try again later.")
		return
	}

	h.reply(chatID, fmt.Sprintf("Your balance is: *%s* BNB", balance))
	h.reply(chatID, "Enter the BEP-20 address you want to withdraw to:")

	h.mu.Lock()
	h.withdrawing[chatID] = &withdrawState{}
	h.mu.Unlock()
}

func (h *Handler) continueWithdraw(ctx context.Context, chatID int64, text string) {
	h.mu.Lock()
	state, ok := h.withdrawing[chatID]
	h.mu.Unlock()
	if !ok || text == "" {
		return
	}

	if state.address == "" {
		state.address = text
		h.reply(chatID, "Enter the amount you want to withdraw:")
		return
	}

	h.clearWithdraw(chatID)

	amount, err := decimal.NewFromString(text)
	if err != nil || amount.IsNegative() || amount.IsZero() {
		h.reply(chatID, "Invalid amount.")
		return
	}

	h.reply(chatID, "Processing withdrawal...")
	receipt, err := h.wallets.Transfer(ctx, models.PlayerID(chatID), state.address, amount)
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			h.reply(chatID, "Insufficient balance.")
			return
		}
		log.Error().Err(err).Int64("chat", chatID).Msg("withdrawal failed")
		h.reply(chatID, "An error occurred while processing the withdrawal.")
		return
	}

	h.reply(chatID, fmt.Sprintf("Withdrawal submitted. Transaction ID: *%s*", receipt.ID))
}

func (h *Handler) clearWithdraw(chatID int64) {
	h.mu.Lock()
	delete(h.withdrawing, chatID)
	h.mu.Unlock()
}

func (h *Handler) sendMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID,
		"Welcome to the *Song Rival*! Try to guess songs as fast as you can and earn BNB by competing with others."+
			"\n\n/rules: View the rules."+
			"\n/deposit: Deposit BNB to your wallet."+
			"\n/withdraw: Withdraw BNB from your wallet.")
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Start Race", "race"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Rules", "rules"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Deposit", "deposit"),
			tgbotapi.NewInlineKeyboardButtonData("Withdraw", "withdraw"),
		),
	)
	h.send(msg)
}

func (h *Handler) sendBetKeyboard(chatID int64) {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for i, stake := range h.stakes {
		label := stake.String() + " BNB"
		if stake.IsZero() {
			label = "Free Game"
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "bet_"+stake.String()))
		if i%2 == 1 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Cancel", "start"),
	))

	msg := tgbotapi.NewMessage(chatID, "Select a bet amount:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.send(msg)
}

func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	h.send(msg)
}

func (h *Handler) send(msg tgbotapi.MessageConfig) {
	if _, err := h.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat", msg.ChatID).Msg("failed to send message")
	}
}

func joinErrorText(err error) string {
	switch {
	case errors.Is(err, game.ErrUnknownStake):
		return "Invalid bet amount."
	case errors.Is(err, game.ErrAlreadyQueued):
		return "Already in the matchmaking pool."
	case errors.Is(err, game.ErrAlreadyInSession):
		return "You are already in a game."
	case errors.Is(err, game.ErrInsufficientStake):
		return "Insufficient balance."
	default:
		return "Something went wrong. Please try again later."
	}
}

func answerErrorText(err error) string {
	switch {
	case errors.Is(err, game.ErrNoActiveGame):
		return "Game not found."
	case errors.Is(err, game.ErrTimedOut):
		return "Game has timed out."
	case errors.Is(err, game.ErrAlreadyAnswered):
		return "You have already answered."
	case errors.Is(err, game.ErrAlreadyDecided):
		return "Your rival has already answered correctly."
	default:
		return "Game not found."
	}
}
