package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/arenabot/tictactoe-arena/internal/config"
	"github.com/arenabot/tictactoe-arena/internal/repository"
	"github.com/arenabot/tictactoe-arena/internal/repository/storage"
	"github.com/arenabot/tictactoe-arena/internal/session"
	"github.com/arenabot/tictactoe-arena/internal/usecase"
	"github.com/arenabot/tictactoe-arena/transport/rest"
	"github.com/arenabot/tictactoe-arena/transport/telegram"
)

var (
	ErrAddrNotFound  = errors.New("redis address string is empty")
	ErrTokenNotFound = errors.New("telegram token is empty")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisClient, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisClient.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	if conf.Telegram.Token == "" {
		return ErrTokenNotFound
	}

	botAPI, err := tgbotapi.NewBotAPI(conf.Telegram.Token)
	if err != nil {
		return fmt.Errorf("could not connect to telegram: %w", err)
	}

	presenceRepo := repository.NewPresenceRepository(redisClient, conf.Matchmaking.PairingOrder)
	sessions := session.NewStore()
	notifier := telegram.NewNotifier(logger, botAPI)
	gameManager := usecase.NewGameManager(logger, presenceRepo, sessions, notifier)

	matchmaker := usecase.NewMatchmaker(logger, gameManager, conf.Matchmaking.GetInterval())
	if err = matchmaker.Start(ctx); err != nil {
		return fmt.Errorf("could not start matchmaker: %w", err)
	}

	defer func() {
		if err = matchmaker.Stop(); err != nil {
			log.Error("could not stop matchmaker", "error", err)
		}
	}()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, presenceRepo)
		if httpErr := restServer.Start(conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Telegram bot transport
	botErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting Telegram transport")
		botServer := telegram.New(logger, botAPI, gameManager)
		if botErr := botServer.Start(ctx); botErr != nil {
			log.Error("Telegram transport error", "error", botErr)
			botErrCh <- botErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-botErrCh:
		return fmt.Errorf("telegram transport error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
