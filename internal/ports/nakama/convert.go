package nakama

import (
	"errors"

	"klondike/internal/app"
	"klondike/internal/domain"
)

// cardView is the client-facing card. Face-down cards are redacted: the
// client learns a card exists but not which one until the engine flips it.
type cardView struct {
	Rank   string `json:"rank,omitempty"`
	Suit   string `json:"suit,omitempty"`
	FaceUp bool   `json:"face_up"`
}

func toCardView(c domain.Card) cardView {
	if !c.FaceUp {
		return cardView{}
	}
	return cardView{
		Rank:   c.Rank.String(),
		Suit:   c.Suit.String(),
		FaceUp: true,
	}
}

func cardViews(cards []domain.Card) []cardView {
	out := make([]cardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardView(c))
	}
	return out
}

// gameView is the JSON board state returned by the game RPCs. The stock is
// hidden information, so only its size crosses the wire.
type gameView struct {
	Stock       int          `json:"stock"`
	Waste       []cardView   `json:"waste"`
	Tableaus    [][]cardView `json:"tableaus"`
	Foundations [][]cardView `json:"foundations"`
	Score       int          `json:"score"`
	Moves       int          `json:"moves"`
	Status      string       `json:"status"`
	Undoable    int          `json:"undoable"`
}

func snapshotView(snap domain.Snapshot) *gameView {
	view := &gameView{
		Stock:       len(snap.Stock().Cards),
		Waste:       cardViews(snap.Waste().Cards),
		Tableaus:    make([][]cardView, domain.TableauCount),
		Foundations: make([][]cardView, domain.FoundationCount),
		Score:       snap.Score,
		Moves:       snap.Moves,
		Status:      snap.Status.String(),
		Undoable:    len(snap.History),
	}
	for i := 0; i < domain.TableauCount; i++ {
		view.Tableaus[i] = cardViews(snap.Tableau(i).Cards)
	}
	for i := 0; i < domain.FoundationCount; i++ {
		view.Foundations[i] = cardViews(snap.Foundation(i).Cards)
	}
	return view
}

func eventKinds(events []app.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, string(ev.Kind))
	}
	return out
}

// errorKind maps an engine rejection to its wire string.
func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrNothingToDraw):
		return errKindNothingToDraw
	case errors.Is(err, domain.ErrNothingToUndo):
		return errKindNothingToUndo
	case errors.Is(err, domain.ErrSourceEmpty):
		return errKindSourceEmpty
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return errKindIndexOutOfRange
	case errors.Is(err, domain.ErrInvalidSequence):
		return errKindInvalidSequence
	case errors.Is(err, domain.ErrIllegalMove):
		return errKindIllegalMove
	default:
		return errKindInternal
	}
}

func pileSize(snap domain.Snapshot, ref domain.StackRef) int {
	switch ref.Kind {
	case domain.StockPile:
		return len(snap.Stock().Cards)
	case domain.WastePile:
		return len(snap.Waste().Cards)
	case domain.TableauPile:
		return len(snap.Tableau(ref.Index).Cards)
	default:
		return len(snap.Foundation(ref.Index).Cards)
	}
}
