package domain

import (
	"math"
	"math/rand"
)

// DeckSize is the number of cards in a single standard deck.
const DeckSize = SuitCount * RankCount

// shufflePasses is max(3, ceil(sqrt(DeckSize))) permutation passes.
var shufflePasses = int(math.Max(3, math.Ceil(math.Sqrt(float64(DeckSize)))))

// NewDeck returns the canonical ordered 52-card deck, all face-down:
// spades Ace..King, then hearts, diamonds, clubs.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for s := Spades; s <= Clubs; s++ {
		for r := Ace; r <= King; r++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of deck permuted by the given source.
// The same source state always yields the same order, so deals are
// reproducible from a seed.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	for pass := 0; pass < shufflePasses; pass++ {
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out
}

// Deal distributes a deck into the canonical thirteen piles: tableau column
// i receives the next i+1 cards with only the last one face-up, and every
// remaining card goes face-down to stock. Stock is stacked so the first
// undealt card is also the first card drawn.
func Deal(deck []Card) [PileSlots]*Pile {
	var piles [PileSlots]*Pile
	piles[slotStock] = NewPile(StockPile)
	piles[slotWaste] = NewPile(WastePile)
	for i := 0; i < TableauCount; i++ {
		piles[slotTableauFirst+i] = NewPile(TableauPile)
	}
	for i := 0; i < FoundationCount; i++ {
		piles[slotFoundationFirst+i] = NewPile(FoundationPile)
	}

	next := 0
	for i := 0; i < TableauCount; i++ {
		col := piles[slotTableauFirst+i]
		for j := 0; j <= i; j++ {
			card := deck[next]
			next++
			card.FaceUp = j == i
			col.Cards = append(col.Cards, card)
		}
	}

	// The stock top is its last element, so the undealt remainder goes in
	// reversed order: deck[next] ends up on top and is drawn first.
	stock := piles[slotStock]
	for i := len(deck) - 1; i >= next; i-- {
		card := deck[i]
		card.FaceUp = false
		stock.Cards = append(stock.Cards, card)
	}
	return piles
}
