package domain

import "strconv"

// Suit identifies one of the four French suits.
type Suit int8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// SuitCount is the number of suits in a standard deck.
const SuitCount = 4

func (s Suit) String() string {
	switch s {
	case Spades:
		return "S"
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Clubs:
		return "C"
	}
	return "?"
}

// Color is derived from a card's suit; hearts and diamonds are red.
type Color int8

const (
	Black Color = iota
	Red
)

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// Rank runs from Ace (1) to King (13).
type Rank int8

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

// RankCount is the number of ranks per suit.
const RankCount = 13

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	if r >= 2 && r <= 10 {
		return strconv.Itoa(int(r))
	}
	return "?"
}

// Card is a single playing card. Rank and suit are fixed when the deck is
// built; face orientation is the one mutable attribute. Each logical card
// occupies exactly one pile at any time.
type Card struct {
	Rank   Rank
	Suit   Suit
	FaceUp bool
}

// Color returns the card's derived color.
func (c Card) Color() Color {
	if c.Suit == Hearts || c.Suit == Diamonds {
		return Red
	}
	return Black
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// SameIdentity reports whether two cards are the same logical card,
// ignoring face orientation.
func (c Card) SameIdentity(o Card) bool {
	return c.Rank == o.Rank && c.Suit == o.Suit
}
