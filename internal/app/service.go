package app

import (
	"math/rand"
	"time"

	"klondike/internal/config"
	"klondike/internal/domain"
)

// Service contains the solitaire use-cases operating on domain state. Every
// mutating call returns the events it produced so adapters can relay them.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

// NewGame deals a fresh game from a service-minted seed.
func (s *Service) NewGame() (*domain.Game, []Event) {
	seed := s.rng.Int63()
	game := domain.NewGame(seed, config.HistoryLimit())
	events := []Event{{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{Seed: seed},
	}}
	return game, events
}

// Draw turns over the next stock card, or recycles the waste back into the
// stock when the stock is empty.
func (s *Service) Draw(game *domain.Game) ([]Event, error) {
	rec, err := game.Draw()
	if err != nil {
		return nil, err
	}

	if rec.Kind == domain.MoveReset {
		return []Event{{
			Kind: EventStockRecycled,
			Payload: StockRecycledPayload{
				Count:      len(rec.Cards),
				ScoreDelta: rec.ScoreDelta,
				Score:      game.Score(),
			},
		}}, nil
	}
	// The record keeps the stock-side facing; the event reports the card
	// as it now lies on waste.
	card := rec.Cards[0]
	card.FaceUp = true
	return []Event{{
		Kind: EventCardDrawn,
		Payload: CardDrawnPayload{
			Card:  card,
			Score: game.Score(),
		},
	}}, nil
}

// Transfer moves the run starting at cardIndex from source to target. When
// the transfer completes the fourth foundation a game_won event follows the
// cards_moved event.
func (s *Service) Transfer(game *domain.Game, source domain.StackRef, cardIndex int, target domain.StackRef) ([]Event, error) {
	rec, err := game.Transfer(source, cardIndex, target)
	if err != nil {
		return nil, err
	}

	events := []Event{{
		Kind: EventCardsMoved,
		Payload: CardsMovedPayload{
			Cards:      rec.Cards,
			Source:     rec.Source,
			Target:     rec.Target,
			Flipped:    rec.Flipped,
			ScoreDelta: rec.ScoreDelta,
			Score:      game.Score(),
		},
	}}
	if game.IsWon() {
		events = append(events, Event{
			Kind: EventGameWon,
			Payload: GameWonPayload{
				Seed:  game.Seed(),
				Score: game.Score(),
				Moves: game.Moves(),
			},
		})
	}
	return events, nil
}

// Undo reverts the most recent recorded move.
func (s *Service) Undo(game *domain.Game) ([]Event, error) {
	rec, err := game.Undo()
	if err != nil {
		return nil, err
	}

	return []Event{{
		Kind: EventMoveUndone,
		Payload: MoveUndonePayload{
			Undone: rec.Kind,
			Score:  game.Score(),
			Moves:  game.Moves(),
		},
	}}, nil
}
