package bot

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ampere/internal/cache"
	"ampere/internal/config"
	"ampere/internal/dedup"
	"ampere/internal/filter"
	"ampere/internal/model"
	"ampere/internal/rank"
)

const (
	maxCards      = 10
	tokenCapacity = 5000
	tokenTTL      = 24 * time.Hour
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Rails is the card source the bot renders.
type Rails interface {
	Rails() []model.Rail
	Rail(name string) (model.Rail, bool)
	Cards(ctx context.Context, name string) ([]model.Card, error)
	Search(ctx context.Context, q filter.Query) []model.Card
}

// Bot is the Telegram front-end: it renders ranked rails and records what the
// user opens.
type Bot struct {
	api    telegramAPI
	cfg    *config.Config
	users  *Users
	rails  Rails
	ranker *rank.Ranker
	tokens *cache.LRU[model.Card]
	log    *slog.Logger
}

// New creates a Bot with the given Telegram token.
func New(token string, cfg *config.Config, users *Users, rails Rails, ranker *rank.Ranker, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return newBot(api, cfg, users, rails, ranker, log), nil
}

func newBot(api telegramAPI, cfg *config.Config, users *Users, rails Rails, ranker *rank.Ranker, log *slog.Logger) *Bot {
	return &Bot{
		api:    api,
		cfg:    cfg,
		users:  users,
		rails:  rails,
		ranker: ranker,
		tokens: cache.NewLRU[model.Card](tokenCapacity, tokenTTL),
		log:    log,
	}
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if cb := update.CallbackQuery; cb != nil {
		if cb.Message == nil || cb.From == nil {
			return
		}
		if !b.cfg.IsUserAllowed(cb.From.ID) {
			b.ack(cb.ID, "Access denied.")
			return
		}
		b.handleCallback(ctx, cb)
		return
	}
	msg := update.Message
	if msg == nil || !msg.IsCommand() || msg.From == nil {
		return
	}
	if !b.cfg.IsUserAllowed(msg.From.ID) {
		b.reply(msg.Chat.ID, "Access denied.")
		return
	}
	b.handleCommand(ctx, msg)
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

// SendCard sends a single card with an open button.
func (b *Bot) SendCard(chatID int64, text string, card model.Card) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Open", openData(b.remember(card))),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send card", "chat_id", chatID, "card_id", card.ID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

// sendCards renders a ranked list with one open button per card.
func (b *Bot) sendCards(chatID int64, title string, cards []model.Card) {
	if len(cards) > maxCards {
		cards = cards[:maxCards]
	}
	msg := tgbotapi.NewMessage(chatID, FormatCards(title, cards))
	msg.DisableWebPagePreview = true
	if len(cards) > 0 {
		var rows [][]tgbotapi.InlineKeyboardButton
		var row []tgbotapi.InlineKeyboardButton
		for i, c := range cards {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d", i+1), openData(b.remember(c))))
			if len(row) == 5 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send cards", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) ack(callbackID, text string) {
	if _, err := b.api.Send(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Error("send callback ack", "error", err)
	}
}

// remember stores card under a short token usable as callback data. Feeds
// may reuse an id across different listings, so the token also covers the
// dedup key.
func (b *Bot) remember(c model.Card) string {
	h := sha256.Sum256([]byte(c.ID + "|" + dedup.Key(c)))
	token := fmt.Sprintf("%x", h[:8])
	b.tokens.Add(token, c)
	return token
}

func openData(token string) string {
	return cbOpen + ":" + token
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		b.handleHelp(chatID)
	case "rails":
		b.handleRails(chatID)
	case "rail":
		b.handleRail(ctx, chatID, args)
	case "search":
		b.handleSearch(ctx, chatID, args)
	case "fav":
		b.handleFav(ctx, chatID, args)
	case "connect":
		b.handleConnect(ctx, chatID, args, true)
	case "disconnect":
		b.handleConnect(ctx, chatID, args, false)
	case "notify":
		b.handleNotify(ctx, chatID, args)
	case "name":
		b.handleName(ctx, chatID, args)
	case "profile":
		b.handleProfile(ctx, chatID)
	case "history":
		b.handleHistory(ctx, chatID)
	case "platforms":
		b.handlePlatforms(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}
