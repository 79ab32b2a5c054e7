package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

const (
	// TableauCount is the number of tableau columns.
	TableauCount = 7
	// FoundationCount is the number of foundation piles.
	FoundationCount = 4
	// PileSlots is the total pile count: stock, waste, tableaus, foundations.
	PileSlots = 2 + TableauCount + FoundationCount
)

// Canonical slot order within a game's pile array.
const (
	slotStock           = 0
	slotWaste           = 1
	slotTableauFirst    = 2
	slotFoundationFirst = slotTableauFirst + TableauCount
)

// ErrInconsistentState marks a snapshot that violates structural
// invariants. A game mutated only through the engine never produces one;
// it surfaces when restoring untrusted input.
var ErrInconsistentState = errors.New("inconsistent game state")

// Status is a game's lifecycle state.
type Status int8

const (
	// InProgress is the only state in which moves are accepted.
	InProgress Status = iota
	// Won means all four foundations are complete.
	Won
)

func (s Status) String() string {
	if s == Won {
		return "won"
	}
	return "in_progress"
}

// StackRef addresses one of a game's piles by kind and index. Index selects
// the column for tableau (0..6) and foundation (0..3) piles and is ignored
// for stock and waste. Callers always address piles through refs; pile
// storage is never shared out.
type StackRef struct {
	Kind  PileKind
	Index int
}

func (r StackRef) String() string {
	switch r.Kind {
	case TableauPile, FoundationPile:
		return fmt.Sprintf("%s[%d]", r.Kind, r.Index)
	}
	return r.Kind.String()
}

func (r StackRef) valid() bool {
	switch r.Kind {
	case StockPile, WastePile:
		return true
	case TableauPile:
		return r.Index >= 0 && r.Index < TableauCount
	case FoundationPile:
		return r.Index >= 0 && r.Index < FoundationCount
	}
	return false
}

// StockRef addresses the stock pile.
func StockRef() StackRef { return StackRef{Kind: StockPile} }

// WasteRef addresses the waste pile.
func WasteRef() StackRef { return StackRef{Kind: WastePile} }

// TableauRef addresses tableau column i.
func TableauRef(i int) StackRef { return StackRef{Kind: TableauPile, Index: i} }

// FoundationRef addresses foundation pile i.
func FoundationRef(i int) StackRef { return StackRef{Kind: FoundationPile, Index: i} }

// Game aggregates the thirteen piles with score, move counter, status,
// deal seed and the undo history. All mutation goes through Draw, Transfer
// and Undo, which serialize on an internal lock so no caller observes a
// half-applied move.
type Game struct {
	mu sync.Mutex

	piles   [PileSlots]*Pile
	score   int
	moves   int
	status  Status
	seed    int64
	history *History
}

// NewGame shuffles a fresh deck from seed, deals it and returns the ready
// game. historyLimit caps the undo history; zero or less means unbounded.
func NewGame(seed int64, historyLimit int) *Game {
	rng := rand.New(rand.NewSource(seed))
	deck := ShuffleDeck(NewDeck(), rng)
	return &Game{
		piles:   Deal(deck),
		status:  InProgress,
		seed:    seed,
		history: NewHistory(historyLimit),
	}
}

// Score returns the current score. Never negative.
func (g *Game) Score() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.score
}

// Moves returns the move counter. Undo counts as a move.
func (g *Game) Moves() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.moves
}

// Status returns the game's lifecycle state.
func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Seed returns the seed the deal was shuffled from.
func (g *Game) Seed() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seed
}

// IsWon reports whether all four foundations are complete.
func (g *Game) IsWon() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status == Won
}

// HistoryLen returns the number of undoable moves.
func (g *Game) HistoryLen() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.history.Len()
}

// pile resolves a ref to the backing pile. Callers hold g.mu.
func (g *Game) pile(ref StackRef) (*Pile, error) {
	switch ref.Kind {
	case StockPile:
		return g.piles[slotStock], nil
	case WastePile:
		return g.piles[slotWaste], nil
	case TableauPile:
		if ref.Index < 0 || ref.Index >= TableauCount {
			return nil, ErrIndexOutOfRange
		}
		return g.piles[slotTableauFirst+ref.Index], nil
	case FoundationPile:
		if ref.Index < 0 || ref.Index >= FoundationCount {
			return nil, ErrIndexOutOfRange
		}
		return g.piles[slotFoundationFirst+ref.Index], nil
	}
	return nil, ErrIllegalMove
}

func (g *Game) foundationsComplete() bool {
	for i := 0; i < FoundationCount; i++ {
		if g.piles[slotFoundationFirst+i].Size() != RankCount {
			return false
		}
	}
	return true
}

// Snapshot is a full value copy of a game's observable state: the thirteen
// piles in canonical slot order (stock, waste, tableau 0..6, foundation
// 0..3), counters, status, deal seed and the ordered history.
type Snapshot struct {
	Piles        [PileSlots]Pile
	Score        int
	Moves        int
	Status       Status
	Seed         int64
	HistoryLimit int
	History      []MoveRecord
}

// Snapshot copies the game's observable state. The copy shares nothing
// with the live game.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := Snapshot{
		Score:        g.score,
		Moves:        g.moves,
		Status:       g.status,
		Seed:         g.seed,
		HistoryLimit: g.history.Limit(),
		History:      g.history.Records(),
	}
	for i, p := range g.piles {
		snap.Piles[i] = p.clone()
	}
	return snap
}

// Stock returns the stock pile copy.
func (s Snapshot) Stock() Pile { return s.Piles[slotStock] }

// Waste returns the waste pile copy.
func (s Snapshot) Waste() Pile { return s.Piles[slotWaste] }

// Tableau returns tableau column i, 0 <= i < TableauCount.
func (s Snapshot) Tableau(i int) Pile { return s.Piles[slotTableauFirst+i] }

// Foundation returns foundation pile i, 0 <= i < FoundationCount.
func (s Snapshot) Foundation(i int) Pile { return s.Piles[slotFoundationFirst+i] }

// SlotKind returns the pile kind held at snapshot slot i in the canonical
// order: stock, waste, tableau 0..6, foundation 0..3.
func SlotKind(i int) PileKind {
	switch {
	case i == slotStock:
		return StockPile
	case i == slotWaste:
		return WastePile
	case i >= slotTableauFirst && i < slotFoundationFirst:
		return TableauPile
	default:
		return FoundationPile
	}
}

// Validate checks the snapshot's structural invariants: every slot holds
// its canonical pile kind, exactly the 52 distinct cards are in play, stock
// is face-down and waste face-up, foundations ascend in a single suit from
// Ace, counters are non-negative, the status matches the foundations, and
// history records are well formed.
func (s Snapshot) Validate() error {
	var seen [DeckSize]bool
	total := 0
	for i := range s.Piles {
		if s.Piles[i].Kind != SlotKind(i) {
			return fmt.Errorf("%w: slot %d holds a %s pile", ErrInconsistentState, i, s.Piles[i].Kind)
		}
		for _, c := range s.Piles[i].Cards {
			if c.Rank < Ace || c.Rank > King || c.Suit < Spades || c.Suit > Clubs {
				return fmt.Errorf("%w: card rank %d suit %d out of range", ErrInconsistentState, c.Rank, c.Suit)
			}
			idx := int(c.Suit)*RankCount + int(c.Rank) - 1
			if seen[idx] {
				return fmt.Errorf("%w: card %s appears twice", ErrInconsistentState, c)
			}
			seen[idx] = true
			total++
		}
	}
	if total != DeckSize {
		return fmt.Errorf("%w: %d cards in play, want %d", ErrInconsistentState, total, DeckSize)
	}
	for _, c := range s.Stock().Cards {
		if c.FaceUp {
			return fmt.Errorf("%w: face-up card %s in stock", ErrInconsistentState, c)
		}
	}
	for _, c := range s.Waste().Cards {
		if !c.FaceUp {
			return fmt.Errorf("%w: face-down card %s in waste", ErrInconsistentState, c)
		}
	}
	for i := 0; i < FoundationCount; i++ {
		cards := s.Foundation(i).Cards
		for j, c := range cards {
			if c.Rank != Rank(j+1) || c.Suit != cards[0].Suit {
				return fmt.Errorf("%w: foundation %d broken at %s", ErrInconsistentState, i, c)
			}
		}
	}
	if s.Score < 0 || s.Moves < 0 {
		return fmt.Errorf("%w: negative counters", ErrInconsistentState)
	}
	complete := true
	for i := 0; i < FoundationCount; i++ {
		if len(s.Foundation(i).Cards) != RankCount {
			complete = false
			break
		}
	}
	if (s.Status == Won) != complete {
		return fmt.Errorf("%w: status %s does not match foundations", ErrInconsistentState, s.Status)
	}
	for i, rec := range s.History {
		if err := rec.validate(); err != nil {
			return fmt.Errorf("history record %d: %w", i, err)
		}
	}
	return nil
}

func (r MoveRecord) validate() error {
	if r.Kind < MoveDraw || r.Kind > MoveTransfer {
		return fmt.Errorf("%w: unknown move kind %d", ErrInconsistentState, r.Kind)
	}
	if len(r.Cards) == 0 {
		return fmt.Errorf("%w: %s record without cards", ErrInconsistentState, r.Kind)
	}
	if r.Kind == MoveDraw && len(r.Cards) != 1 {
		return fmt.Errorf("%w: draw record with %d cards", ErrInconsistentState, len(r.Cards))
	}
	if r.Kind == MoveTransfer {
		if !r.Source.valid() || r.Source.Kind == StockPile {
			return fmt.Errorf("%w: transfer source %s", ErrInconsistentState, r.Source)
		}
		if !r.Target.valid() || (r.Target.Kind != TableauPile && r.Target.Kind != FoundationPile) {
			return fmt.Errorf("%w: transfer target %s", ErrInconsistentState, r.Target)
		}
	}
	return nil
}

// Restore rebuilds a playable game from a snapshot, validating it first.
func Restore(snap Snapshot) (*Game, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		score:  snap.Score,
		moves:  snap.Moves,
		status: snap.Status,
		seed:   snap.Seed,
	}
	for i := range snap.Piles {
		p := snap.Piles[i].clone()
		g.piles[i] = &p
	}
	g.history = historyFromRecords(snap.HistoryLimit, snap.History)
	return g, nil
}
