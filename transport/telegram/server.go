package telegram

import (
	"context"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpMessage = "I only answer game commands. Send /play to find an opponent."

type gameManager interface {
	RegisterUser(ctx context.Context, userID int64) error
	Interrupt(ctx context.Context, userID int64) error
	ApplyMove(ctx context.Context, userID int64, move string) error
	IsPlaying(ctx context.Context, userID int64) bool
}

// Server is the long-polling bot transport: it parses inbound commands
// and hands user actions to the game manager. Outbound messages go
// through the Notifier, not through this loop.
type Server struct {
	logger  *slog.Logger
	api     *tgbotapi.BotAPI
	manager gameManager
}

func New(logger *slog.Logger, api *tgbotapi.BotAPI, manager gameManager) *Server {
	return &Server{
		logger:  logger,
		api:     api,
		manager: manager,
	}
}

// Start runs the update loop until the context is canceled.
func (that *Server) Start(ctx context.Context) error {
	log := that.logger.With("component", "telegram")

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	updates := that.api.GetUpdatesChan(updateConfig)

	log.Info("telegram long polling started", "bot", that.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			that.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			that.handleUpdate(ctx, update)
		}
	}
}

func (that *Server) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	log := that.logger.With("method", "handleUpdate")

	if update.Message == nil || update.Message.From == nil {
		return
	}

	userID := update.Message.From.ID

	var err error

	switch {
	case update.Message.IsCommand() && update.Message.Command() == "play":
		err = that.manager.RegisterUser(ctx, userID)
	case update.Message.IsCommand() && update.Message.Command() == "stop":
		err = that.manager.Interrupt(ctx, userID)
	case that.manager.IsPlaying(ctx, userID):
		err = that.manager.ApplyMove(ctx, userID, strings.TrimSpace(update.Message.Text))
	default:
		that.reply(userID, helpMessage)
	}

	if err != nil {
		log.Error("failed to handle update", "user_id", userID, "error", err)
	}
}

func (that *Server) reply(userID int64, text string) {
	log := that.logger.With("method", "reply")

	if _, err := that.api.Send(tgbotapi.NewMessage(userID, text)); err != nil {
		log.Error("failed to send reply", "user_id", userID, "error", err)
	}
}
