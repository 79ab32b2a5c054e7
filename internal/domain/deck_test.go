package domain

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("deck size = %d, want %d", len(deck), DeckSize)
	}
	if deck[0] != (Card{Rank: Ace, Suit: Spades}) {
		t.Errorf("first card = %v, want ace of spades", deck[0])
	}
	if deck[DeckSize-1] != (Card{Rank: King, Suit: Clubs}) {
		t.Errorf("last card = %v, want king of clubs", deck[DeckSize-1])
	}
	seen := map[Card]bool{}
	for _, c := range deck {
		if c.FaceUp {
			t.Errorf("card %s dealt face-up", c)
		}
		if seen[c] {
			t.Errorf("card %s appears twice", c)
		}
		seen[c] = true
	}
}

func TestShuffleDeck(t *testing.T) {
	deck := NewDeck()

	a := ShuffleDeck(deck, rand.New(rand.NewSource(7)))
	b := ShuffleDeck(deck, rand.New(rand.NewSource(7)))
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different orders")
	}

	c := ShuffleDeck(deck, rand.New(rand.NewSource(8)))
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds produced the same order")
	}

	counts := map[Card]int{}
	for _, card := range a {
		counts[card]++
	}
	for _, card := range deck {
		if counts[card] != 1 {
			t.Errorf("card %s count = %d after shuffle", card, counts[card])
		}
	}

	if !reflect.DeepEqual(deck, NewDeck()) {
		t.Error("shuffle mutated its input")
	}
}

func TestDeal(t *testing.T) {
	deck := NewDeck()
	piles := Deal(deck)

	next := 0
	for i := 0; i < TableauCount; i++ {
		col := piles[slotTableauFirst+i]
		if col.Size() != i+1 {
			t.Fatalf("tableau %d size = %d, want %d", i, col.Size(), i+1)
		}
		for j, c := range col.Cards {
			want := deck[next]
			next++
			if !c.SameIdentity(want) {
				t.Errorf("tableau %d card %d = %s, want %s", i, j, c, want)
			}
			if c.FaceUp != (j == col.Size()-1) {
				t.Errorf("tableau %d card %d orientation wrong", i, j)
			}
		}
	}

	stock := piles[slotStock]
	if stock.Size() != DeckSize-next {
		t.Fatalf("stock size = %d, want %d", stock.Size(), DeckSize-next)
	}
	top, _ := stock.Top()
	if !top.SameIdentity(deck[next]) {
		t.Errorf("stock top = %s, want first undealt card %s", top, deck[next])
	}
	for _, c := range stock.Cards {
		if c.FaceUp {
			t.Errorf("stock card %s is face-up", c)
		}
	}

	if !piles[slotWaste].IsEmpty() {
		t.Error("waste dealt cards")
	}
	for i := 0; i < FoundationCount; i++ {
		if !piles[slotFoundationFirst+i].IsEmpty() {
			t.Errorf("foundation %d dealt cards", i)
		}
	}
}
