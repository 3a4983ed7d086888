package telegram

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier formats semantic game events into chat messages. Delivery is
// fire-and-forget: failures are logged here and never reach the core.
type Notifier struct {
	logger *slog.Logger
	sender sender
}

func NewNotifier(logger *slog.Logger, sender sender) *Notifier {
	return &Notifier{
		logger: logger,
		sender: sender,
	}
}

func (that *Notifier) NotifyQueued(userID int64) {
	that.send(userID, "You are in the queue. I'll message you as soon as an opponent shows up.")
}

func (that *Notifier) NotifyAlreadyQueued(userID int64) {
	that.send(userID, "You are already in the queue.")
}

func (that *Notifier) NotifyAlreadyPlaying(userID, partnerID int64) {
	that.send(userID, fmt.Sprintf("You are already in a game with %d. Send /stop to leave it.", partnerID))
}

func (that *Notifier) NotifyGameStarted(firstID, secondID int64, board string) {
	that.send(firstID, fmt.Sprintf("Game started. Your opponent: %d. You play x.\n%s", secondID, board))
	that.send(secondID, fmt.Sprintf("Game started. Your opponent: %d. You play o.\n%s", firstID, board))
}

func (that *Notifier) NotifyYourTurn(userID int64) {
	that.send(userID, "Your move. Send two digits: row, then column (11 is the top-left cell).")
}

func (that *Notifier) NotifyBoardUpdate(userID int64, board string) {
	that.send(userID, board)
}

func (that *Notifier) NotifyMoveRejected(userID int64, reason string) {
	that.send(userID, reason)
}

func (that *Notifier) NotifyGameWon(winnerID, loserID int64) {
	that.send(winnerID, "Game over. You won.")
	that.send(loserID, "Game over. You lost.")
}

func (that *Notifier) NotifyGameDraw(firstID, secondID int64) {
	that.send(firstID, "Game over. It's a draw.")
	that.send(secondID, "Game over. It's a draw.")
}

func (that *Notifier) NotifyInterrupted(userID int64) {
	that.send(userID, "Game interrupted.")
}

func (that *Notifier) NotifyInterruptedByOpponent(partnerID int64) {
	that.send(partnerID, "Game interrupted by your opponent.")
}

func (that *Notifier) send(userID int64, text string) {
	if _, err := that.sender.Send(tgbotapi.NewMessage(userID, text)); err != nil {
		that.logger.Error("failed to deliver notification", "user_id", userID, "error", err)
	}
}
