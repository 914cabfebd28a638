package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const cbOpen = "open"

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	b.ack(cb.ID, "")

	action, token, ok := strings.Cut(cb.Data, ":")
	if !ok || token == "" {
		return
	}

	b.log.Info("callback",
		"action", action,
		"token", token,
		"chat_id", chatID,
		"user_id", cb.From.ID,
		"username", cb.From.UserName,
	)

	switch action {
	case cbOpen:
		b.handleOpen(ctx, chatID, token)
	}
}

func (b *Bot) handleOpen(ctx context.Context, chatID int64, token string) {
	card, ok := b.tokens.Get(token)
	if !ok {
		b.reply(chatID, "This card is no longer available. Open the rail again.")
		return
	}

	usr := b.users.For(chatID)
	usr.Engagement.LogViewing(ctx, card)
	usr.Engagement.Track(ctx, "card_open", map[string]any{
		"id":       card.ID,
		"platform": card.PlatformID,
		"league":   card.League,
		"badge":    string(card.Badge),
	})

	b.reply(chatID, FormatCard(card))
}
