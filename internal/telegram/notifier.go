package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quantarena/agent-league/internal/config"
	"github.com/quantarena/agent-league/internal/engine"
	"github.com/quantarena/agent-league/internal/logger"
)

type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
	logger  *logger.Logger
}

func NewNotifier(cfg *config.Config, log *logger.Logger) *Notifier {
	if !cfg.Telegram.Enabled {
		return &Notifier{enabled: false, logger: log}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Error("failed to create telegram bot", "error", err)
		return &Notifier{enabled: false, logger: log}
	}

	log.Info("telegram bot connected", "username", bot.Self.UserName)

	return &Notifier{
		bot:     bot,
		chatID:  cfg.Telegram.ChatID,
		enabled: true,
		logger:  log,
	}
}

func (n *Notifier) NotifyTrade(agentName string, trade *engine.Trade) {
	emoji := "🟢"
	if trade.Action == "sell" {
		emoji = "🔴"
	}
	msg := fmt.Sprintf("%s *%s* %s\nAgent: %s\nQty: %d @ $%.2f",
		emoji, trade.Action, trade.Ticker, agentName, trade.Quantity, trade.EntryPrice)
	n.send(msg)
}

func (n *Notifier) NotifyCycle(leagueName string, executed, rejected, holds int) {
	msg := fmt.Sprintf("📊 *Cycle complete* [%s]\nExecuted: %d\nRejected: %d\nHolds: %d",
		leagueName, executed, rejected, holds)
	n.send(msg)
}

func (n *Notifier) NotifyError(context string, err error) {
	msg := fmt.Sprintf("⚠️ *Error* [%s]\n%v", context, err)
	n.send(msg)
}

func (n *Notifier) NotifyStatus(message string) {
	n.send(message)
}

func (n *Notifier) send(text string) {
	if !n.enabled {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("send telegram message", "error", err)
	}
}
