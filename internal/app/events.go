package app

import "klondike/internal/domain"

// EventKind identifies emitted game events for adapter dispatch.
type EventKind string

const (
	EventGameStarted   EventKind = "game_started"
	EventCardDrawn     EventKind = "card_drawn"
	EventStockRecycled EventKind = "stock_recycled"
	EventCardsMoved    EventKind = "cards_moved"
	EventMoveUndone    EventKind = "move_undone"
	EventGameWon       EventKind = "game_won"
)

// Event is an app event describing one state change.
type Event struct {
	Kind    EventKind
	Payload any
}

type GameStartedPayload struct {
	Seed int64
}

type CardDrawnPayload struct {
	Card  domain.Card
	Score int
}

type StockRecycledPayload struct {
	Count      int
	ScoreDelta int
	Score      int
}

type CardsMovedPayload struct {
	Cards      []domain.Card
	Source     domain.StackRef
	Target     domain.StackRef
	Flipped    bool
	ScoreDelta int
	Score      int
}

type MoveUndonePayload struct {
	Undone domain.MoveKind
	Score  int
	Moves  int
}

type GameWonPayload struct {
	Seed  int64
	Score int
	Moves int
}
