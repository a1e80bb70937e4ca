// Package notification forwards booking events to people.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iliyamo/booking-ledger/internal/queue"
)

// TelegramNotifier posts booking events to one Telegram chat.  A notifier
// without a token or chat id is disabled and drops every message.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier connects to the Bot API.  An empty token returns a
// disabled notifier.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" {
		slog.Warn("telegram bot token is empty, notifications disabled")
		return &TelegramNotifier{}, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// Notify implements queue.Notifier.
func (n *TelegramNotifier) Notify(ctx context.Context, ev queue.BookingEvent) error {
	if n.bot == nil || n.chatID == 0 {
		slog.Debug("notification skipped (bot disabled)", "event", ev.ID)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, Message(ev))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram notification: %w", err)
	}
	return nil
}

// Message renders the Markdown text sent for an event.
func Message(ev queue.BookingEvent) string {
	title := map[queue.EventType]string{
		queue.EventBookingCreated:       "New booking request",
		queue.EventBookingStatusChanged: "Booking status changed",
		queue.EventBookingCancelled:     "Booking cancelled",
		queue.EventBookingEscrowSet:     "Escrow attached",
	}[ev.Type]
	if title == "" {
		title = string(ev.Type)
	}
	return fmt.Sprintf("*%s*\n\nBooking: #%d\nResource: %s\nGuest: %s\nStatus: %s\nFrom: %s\nTo: %s (UTC)",
		title, ev.ReservationID, ev.ResourceID, ev.RequesterID, ev.Status,
		epoch(ev.Start), epoch(ev.End))
}

func epoch(sec uint64) string {
	if sec > 1<<62 {
		return fmt.Sprintf("%d", sec)
	}
	return time.Unix(int64(sec), 0).UTC().Format("02.01.2006 15:04")
}
