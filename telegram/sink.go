package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageLength is the Bot API limit for one text message, in UTF-16
// code units; runes are a safe approximation for recognizer output.
const maxMessageLength = 4096

// replySink answers one voice message by replying to it.
type replySink struct {
	api     API
	chatID  int64
	replyTo int

	// scrub strips the bot token from transport errors.
	scrub func(error) error
}

func (s *replySink) SendText(ctx context.Context, text string) error {
	for _, part := range splitText(text, maxMessageLength) {
		if err := s.send(ctx, part); err != nil {
			return err
		}
	}
	return nil
}

func (s *replySink) SendError(ctx context.Context, text string) error {
	return s.send(ctx, text)
}

func (s *replySink) send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.ReplyToMessageID = s.replyTo
	if _, err := s.api.Send(msg); err != nil {
		if s.scrub != nil {
			err = s.scrub(err)
		}
		return fmt.Errorf("telegram: send reply: %w", err)
	}
	return nil
}

func splitText(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var parts []string
	for len(runes) > limit {
		parts = append(parts, string(runes[:limit]))
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
