package domain

import "errors"

// Rejected operations are ordinary outcomes reported as values; the game
// is left untouched and nothing here panics on player input.
var (
	ErrNothingToDraw   = errors.New("nothing to draw")
	ErrSourceEmpty     = errors.New("source pile is empty")
	ErrIndexOutOfRange = errors.New("card index out of range")
	ErrIllegalMove     = errors.New("illegal move")
	ErrInvalidSequence = errors.New("invalid sequence")
	ErrNothingToUndo   = errors.New("nothing to undo")
)

// Score deltas. The cumulative score is floored at zero.
const (
	ScoreDraw                = 5
	ScoreFlip                = 5
	ScoreWasteToTableau      = 5
	ScoreWasteToFoundation   = 10
	ScoreTableauToFoundation = 10
	ScoreFoundationToTableau = -15
	ScoreResetPenalty        = -100
)

// Draw pops the top stock card face-up onto waste. When stock is empty and
// waste is not, it instead recycles the entire waste back into stock
// face-down, one reset event with a single flat penalty regardless of how
// many cards move. Returns the appended record.
func (g *Game) Draw() (MoveRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status == Won {
		return MoveRecord{}, ErrIllegalMove
	}
	stock := g.piles[slotStock]
	waste := g.piles[slotWaste]

	switch {
	case !stock.IsEmpty():
		cards, _ := stock.Take(1)
		rec := MoveRecord{Kind: MoveDraw, Cards: copyCards(cards)}
		waste.Push(cards...)
		rec.ScoreDelta = g.applyScore(ScoreDraw)
		g.history.Push(rec)
		g.moves++
		return rec, nil

	case !waste.IsEmpty():
		cards, _ := waste.Take(waste.Size())
		rec := MoveRecord{Kind: MoveReset, Cards: copyCards(cards)}
		reverseCards(cards)
		stock.Push(cards...)
		rec.ScoreDelta = g.applyScore(ScoreResetPenalty)
		g.history.Push(rec)
		g.moves++
		return rec, nil

	default:
		return MoveRecord{}, ErrNothingToDraw
	}
}

// Transfer moves a group of cards from source to target. For a tableau
// source the group is the suffix starting at cardIndex, which must be a
// valid face-up run; waste and foundation sources release exactly their
// top card, addressed by its index. Targets are tableau or foundation
// piles. On any rejection the game is unchanged.
func (g *Game) Transfer(source StackRef, cardIndex int, target StackRef) (MoveRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status == Won {
		return MoveRecord{}, ErrIllegalMove
	}
	src, err := g.pile(source)
	if err != nil {
		return MoveRecord{}, err
	}
	dst, err := g.pile(target)
	if err != nil {
		return MoveRecord{}, err
	}
	if source.Kind == StockPile {
		return MoveRecord{}, ErrIllegalMove
	}
	if target.Kind != TableauPile && target.Kind != FoundationPile {
		return MoveRecord{}, ErrIllegalMove
	}
	if src == dst {
		return MoveRecord{}, ErrIllegalMove
	}
	if src.IsEmpty() {
		return MoveRecord{}, ErrSourceEmpty
	}
	if cardIndex < 0 || cardIndex >= src.Size() {
		return MoveRecord{}, ErrIndexOutOfRange
	}

	count := src.Size() - cardIndex
	if source.Kind != TableauPile && count != 1 {
		return MoveRecord{}, ErrIllegalMove
	}
	candidate := src.Cards[cardIndex:]
	if source.Kind == TableauPile && !ValidRun(candidate) {
		return MoveRecord{}, ErrInvalidSequence
	}
	if !dst.CanAccept(candidate) {
		return MoveRecord{}, ErrIllegalMove
	}

	cards, _ := src.Take(count)
	rec := MoveRecord{
		Kind:   MoveTransfer,
		Cards:  copyCards(cards),
		Source: source,
		Target: target,
	}
	dst.Push(cards...)

	delta := transferDelta(source.Kind, target.Kind)
	if source.Kind == TableauPile {
		if top, ok := src.Top(); ok && !top.FaceUp {
			src.Cards[src.Size()-1].FaceUp = true
			rec.Flipped = true
			delta += ScoreFlip
		}
	}
	rec.ScoreDelta = g.applyScore(delta)
	g.history.Push(rec)
	g.moves++
	if g.foundationsComplete() {
		g.status = Won
	}
	return rec, nil
}

// Undo reverses the most recent recorded move. Every field returns to its
// prior value except the move counter, which also counts the undo. The
// status is re-derived, so undoing the winning move resumes play. Undo
// itself is never recorded.
func (g *Game) Undo() (MoveRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.history.Pop()
	if !ok {
		return MoveRecord{}, ErrNothingToUndo
	}
	stock := g.piles[slotStock]
	waste := g.piles[slotWaste]

	// History holds only completed moves, so the takes below cannot fail.
	switch rec.Kind {
	case MoveDraw:
		cards, _ := waste.Take(len(rec.Cards))
		stock.Push(cards...)
	case MoveReset:
		cards, _ := stock.Take(len(rec.Cards))
		reverseCards(cards)
		waste.Push(cards...)
	case MoveTransfer:
		src, _ := g.pile(rec.Source)
		dst, _ := g.pile(rec.Target)
		cards, _ := dst.Take(len(rec.Cards))
		if rec.Flipped {
			src.Cards[src.Size()-1].FaceUp = false
		}
		src.Push(cards...)
	}

	g.score -= rec.ScoreDelta
	g.moves++
	if g.foundationsComplete() {
		g.status = Won
	} else {
		g.status = InProgress
	}
	return rec, nil
}

// applyScore adds delta to the score, flooring at zero, and returns the
// delta that actually took effect.
func (g *Game) applyScore(delta int) int {
	next := g.score + delta
	if next < 0 {
		delta -= next
		next = 0
	}
	g.score = next
	return delta
}

func transferDelta(from, to PileKind) int {
	switch {
	case from == WastePile && to == TableauPile:
		return ScoreWasteToTableau
	case from == WastePile && to == FoundationPile:
		return ScoreWasteToFoundation
	case from == TableauPile && to == FoundationPile:
		return ScoreTableauToFoundation
	case from == FoundationPile && to == TableauPile:
		return ScoreFoundationToTableau
	}
	return 0
}

func reverseCards(cards []Card) {
	for i, j := 0, len(cards)-1; i < j; i, j = i+1, j-1 {
		cards[i], cards[j] = cards[j], cards[i]
	}
}
