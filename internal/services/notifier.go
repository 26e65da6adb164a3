package services

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ispcrm/internal/models"
)

// EmailApprovalNotifier mails the sales manager when a deal needs approval.
type EmailApprovalNotifier struct {
	email EmailService
	log   *slog.Logger
}

func NewEmailApprovalNotifier(email EmailService, log *slog.Logger) *EmailApprovalNotifier {
	return &EmailApprovalNotifier{email: email, log: log}
}

func (n *EmailApprovalNotifier) DealPendingApproval(deal *models.Deal) {
	if err := n.email.SendDealPendingApproval(deal); err != nil {
		n.log.Warn("approval email failed", "deal_id", deal.ID, "err", err)
	}
}

// TelegramNotifier pushes approval requests into the sales channel chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

func NewTelegramNotifier(botToken string, chatID int64, log *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, log: log}, nil
}

func (n *TelegramNotifier) DealPendingApproval(deal *models.Deal) {
	text := fmt.Sprintf("💰 Deal #%d %q is waiting for price approval (total %.2f)",
		deal.ID, deal.Title, deal.TotalAmount)
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Warn("telegram notification failed", "deal_id", deal.ID, "err", err)
	}
}
