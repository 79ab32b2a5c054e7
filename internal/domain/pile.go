package domain

// PileKind selects which acceptance rule a pile enforces.
type PileKind int8

const (
	StockPile PileKind = iota
	WastePile
	TableauPile
	FoundationPile
)

func (k PileKind) String() string {
	switch k {
	case StockPile:
		return "stock"
	case WastePile:
		return "waste"
	case TableauPile:
		return "tableau"
	case FoundationPile:
		return "foundation"
	}
	return "unknown"
}

// Pile is an ordered stack of cards with a kind tag. The last element of
// Cards is the top (last pushed, first popped). Piles belong to exactly one
// Game and are addressed through StackRef, never shared.
type Pile struct {
	Kind  PileKind
	Cards []Card
}

// NewPile returns an empty pile of the given kind.
func NewPile(kind PileKind) *Pile {
	return &Pile{Kind: kind}
}

// IsEmpty reports whether the pile holds no cards.
func (p *Pile) IsEmpty() bool {
	return len(p.Cards) == 0
}

// Size returns the number of cards in the pile.
func (p *Pile) Size() int {
	return len(p.Cards)
}

// Top returns the top card, or false when the pile is empty.
func (p *Pile) Top() (Card, bool) {
	if len(p.Cards) == 0 {
		return Card{}, false
	}
	return p.Cards[len(p.Cards)-1], true
}

// CanRelease reports whether n cards can be taken off the top.
func (p *Pile) CanRelease(n int) bool {
	return n > 0 && n <= len(p.Cards)
}

// CanAccept applies the pile kind's acceptance rule to an incoming group.
// The group's internal validity is the caller's concern (see ValidRun);
// only the group's lead card is tested against the current top.
//
// Stock never accepts cards here: it is refilled exclusively by the stock
// reset inside Draw.
func (p *Pile) CanAccept(cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	switch p.Kind {
	case StockPile:
		return false
	case WastePile:
		return len(cards) == 1
	case FoundationPile:
		if len(cards) != 1 {
			return false
		}
		top, ok := p.Top()
		if !ok {
			return cards[0].Rank == Ace
		}
		return cards[0].Suit == top.Suit && cards[0].Rank == top.Rank+1
	case TableauPile:
		lead := cards[0]
		top, ok := p.Top()
		if !ok {
			return lead.Rank == King
		}
		return lead.Color() != top.Color() && lead.Rank == top.Rank-1
	}
	return false
}

// Push appends cards preserving their relative order. Orientation
// invariants are normalized on arrival: Waste cards are always face-up,
// Stock cards always face-down.
func (p *Pile) Push(cards ...Card) {
	switch p.Kind {
	case WastePile:
		for i := range cards {
			cards[i].FaceUp = true
		}
	case StockPile:
		for i := range cards {
			cards[i].FaceUp = false
		}
	}
	p.Cards = append(p.Cards, cards...)
}

// Take removes the top n cards as one ordered group, bottom-most first,
// preserving their in-pile order. It fails without mutating the pile when
// fewer than n cards are present.
func (p *Pile) Take(n int) ([]Card, bool) {
	if !p.CanRelease(n) {
		return nil, false
	}
	cut := len(p.Cards) - n
	out := make([]Card, n)
	copy(out, p.Cards[cut:])
	p.Cards = p.Cards[:cut]
	return out, true
}

// ValidRun reports whether cards form a movable tableau run: every card
// face-up, ranks strictly descending by one, colors strictly alternating.
// A single card is trivially valid.
func ValidRun(cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	for i, c := range cards {
		if !c.FaceUp {
			return false
		}
		if i == 0 {
			continue
		}
		prev := cards[i-1]
		if c.Rank != prev.Rank-1 || c.Color() == prev.Color() {
			return false
		}
	}
	return true
}

func (p *Pile) clone() Pile {
	out := Pile{Kind: p.Kind}
	if len(p.Cards) > 0 {
		out.Cards = make([]Card, len(p.Cards))
		copy(out.Cards, p.Cards)
	}
	return out
}
