package domain

// MoveKind tags a MoveRecord with the operation it reverses.
type MoveKind int8

const (
	// MoveDraw is one card drawn from stock to waste.
	MoveDraw MoveKind = iota
	// MoveReset is the whole waste recycled back into stock.
	MoveReset
	// MoveTransfer is a group moved between two piles.
	MoveTransfer
)

func (k MoveKind) String() string {
	switch k {
	case MoveDraw:
		return "draw"
	case MoveReset:
		return "reset"
	case MoveTransfer:
		return "transfer"
	}
	return "unknown"
}

// DefaultHistoryLimit bounds a game's undo history unless the caller
// chooses otherwise.
const DefaultHistoryLimit = 200

// MoveRecord describes one executed move precisely enough to reverse it.
// Kind selects which fields are meaningful: Draw and Reset use Cards and
// ScoreDelta only; Transfer uses every field. Cards hold the moved group
// exactly as the source pile held it, bottom-most first. ScoreDelta is the
// delta actually applied after the score floor, so reversing it restores
// the prior score even when the floor clamped.
type MoveRecord struct {
	Kind       MoveKind
	Cards      []Card
	Source     StackRef
	Target     StackRef
	Flipped    bool
	ScoreDelta int
}

// History is a LIFO list of move records owned by exactly one Game. A
// positive limit caps its length; pushing onto a full history discards the
// oldest record. A limit of zero or less means unbounded.
type History struct {
	limit   int
	records []MoveRecord
}

// NewHistory returns an empty history with the given limit.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Push appends a record, discarding the oldest one first if the history
// is at its limit.
func (h *History) Push(rec MoveRecord) {
	if h.limit > 0 && len(h.records) >= h.limit {
		n := copy(h.records, h.records[1:])
		h.records = h.records[:n]
	}
	h.records = append(h.records, rec)
}

// Pop removes and returns the most recent record, or false when empty.
func (h *History) Pop() (MoveRecord, bool) {
	if len(h.records) == 0 {
		return MoveRecord{}, false
	}
	rec := h.records[len(h.records)-1]
	h.records = h.records[:len(h.records)-1]
	return rec, true
}

// Len returns the number of recorded moves.
func (h *History) Len() int {
	return len(h.records)
}

// Limit returns the configured cap, zero or less meaning unbounded.
func (h *History) Limit() int {
	return h.limit
}

// Records returns a deep copy of the history, oldest first.
func (h *History) Records() []MoveRecord {
	if len(h.records) == 0 {
		return nil
	}
	out := make([]MoveRecord, len(h.records))
	for i, rec := range h.records {
		out[i] = rec
		out[i].Cards = copyCards(rec.Cards)
	}
	return out
}

func historyFromRecords(limit int, recs []MoveRecord) *History {
	h := NewHistory(limit)
	for _, rec := range recs {
		rec.Cards = copyCards(rec.Cards)
		h.Push(rec)
	}
	return h
}

func copyCards(cards []Card) []Card {
	if len(cards) == 0 {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}
