package usecase

// Notifier turns semantic game events into outbound user messages. The
// core fires and forgets: implementations own formatting and transport
// and log their own delivery failures.
type Notifier interface {
	NotifyQueued(userID int64)
	NotifyAlreadyQueued(userID int64)
	NotifyAlreadyPlaying(userID, partnerID int64)
	NotifyGameStarted(firstID, secondID int64, board string)
	NotifyYourTurn(userID int64)
	NotifyBoardUpdate(userID int64, board string)
	NotifyMoveRejected(userID int64, reason string)
	NotifyGameWon(winnerID, loserID int64)
	NotifyGameDraw(firstID, secondID int64)
	NotifyInterrupted(userID int64)
	NotifyInterruptedByOpponent(partnerID int64)
}
