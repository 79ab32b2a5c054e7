package app

import (
	"errors"
	"fmt"
	"strconv"

	"klondike/internal/domain"
)

// Journal op names.
const (
	OpDraw = "draw"
	OpMove = "move"
	OpUndo = "undo"
)

var (
	ErrReplayTooLong  = errors.New("replay exceeds op limit")
	ErrReplayRejected = errors.New("replay op rejected")
)

// Op is one recorded engine call. Move ops carry the source and target pile
// tokens plus the index of the first moved card.
type Op struct {
	Op    string `json:"op"`
	From  string `json:"from,omitempty"`
	Index int    `json:"index,omitempty"`
	To    string `json:"to,omitempty"`
}

// Journal is the forward record of one game: the deal seed plus every
// successful operation in order. A client that kept its journal can prove
// an outcome without the server trusting any reported state.
type Journal struct {
	Seed int64 `json:"seed"`
	Ops  []Op  `json:"ops"`
}

// ReplayResult is the verified outcome of a journal.
type ReplayResult struct {
	Seed  int64
	Score int
	Moves int
	Won   bool
}

// Verify replays the journal against a fresh deal of its seed and returns
// the outcome. Any rejected op invalidates the whole journal; maxOps <= 0
// disables the length cap.
//
// The replay runs with unbounded history. A client playing under a history
// cap can only undo records it still holds, and those are exactly the most
// recent ones, so every sequence a capped client performed replays the same
// way without the cap.
func Verify(journal Journal, maxOps int) (ReplayResult, error) {
	if maxOps > 0 && len(journal.Ops) > maxOps {
		return ReplayResult{}, fmt.Errorf("%w: %d ops, limit %d", ErrReplayTooLong, len(journal.Ops), maxOps)
	}

	game := domain.NewGame(journal.Seed, 0)
	for i, op := range journal.Ops {
		var err error
		switch op.Op {
		case OpDraw:
			_, err = game.Draw()
		case OpUndo:
			_, err = game.Undo()
		case OpMove:
			var source, target domain.StackRef
			source, err = ParseRef(op.From)
			if err == nil {
				target, err = ParseRef(op.To)
			}
			if err == nil {
				_, err = game.Transfer(source, op.Index, target)
			}
		default:
			err = fmt.Errorf("unknown op %q", op.Op)
		}
		if err != nil {
			return ReplayResult{}, fmt.Errorf("%w: op %d (%s): %v", ErrReplayRejected, i, op.Op, err)
		}
	}

	return ReplayResult{
		Seed:  journal.Seed,
		Score: game.Score(),
		Moves: game.Moves(),
		Won:   game.IsWon(),
	}, nil
}

// RefToken formats a stack ref as its wire token: "s", "w", "t0".."t6" or
// "f0".."f3".
func RefToken(ref domain.StackRef) string {
	switch ref.Kind {
	case domain.StockPile:
		return "s"
	case domain.WastePile:
		return "w"
	case domain.TableauPile:
		return "t" + strconv.Itoa(ref.Index)
	default:
		return "f" + strconv.Itoa(ref.Index)
	}
}

// ParseRef parses a wire pile token.
func ParseRef(token string) (domain.StackRef, error) {
	switch token {
	case "s":
		return domain.StockRef(), nil
	case "w":
		return domain.WasteRef(), nil
	}
	if len(token) >= 2 {
		if index, err := strconv.Atoi(token[1:]); err == nil {
			switch {
			case token[0] == 't' && index >= 0 && index < domain.TableauCount:
				return domain.TableauRef(index), nil
			case token[0] == 'f' && index >= 0 && index < domain.FoundationCount:
				return domain.FoundationRef(index), nil
			}
		}
	}
	return domain.StackRef{}, fmt.Errorf("unknown pile %q", token)
}
