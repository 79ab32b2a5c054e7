package app

import (
	"errors"
	"testing"

	"klondike/internal/domain"
)

func TestVerifyReplaysJournal(t *testing.T) {
	journal := Journal{
		Seed: 11,
		Ops: []Op{
			{Op: OpDraw},
			{Op: OpDraw},
			{Op: OpDraw},
			{Op: OpUndo},
		},
	}

	res, err := Verify(journal, 0)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if res.Seed != 11 {
		t.Errorf("Seed = %d, want 11", res.Seed)
	}
	if res.Moves != 4 {
		t.Errorf("Moves = %d, want 4", res.Moves)
	}
	// Three draws minus one undone draw.
	if res.Score != 2*domain.ScoreDraw {
		t.Errorf("Score = %d, want %d", res.Score, 2*domain.ScoreDraw)
	}
	if res.Won {
		t.Error("Won = true for an unfinished game")
	}
}

func TestVerifyMatchesLiveGame(t *testing.T) {
	game := domain.NewGame(77, domain.DefaultHistoryLimit)
	journal := Journal{Seed: 77}
	for i := 0; i < 10; i++ {
		if _, err := game.Draw(); err != nil {
			t.Fatalf("Draw() error: %v", err)
		}
		journal.Ops = append(journal.Ops, Op{Op: OpDraw})
	}

	res, err := Verify(journal, 100)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if res.Score != game.Score() || res.Moves != game.Moves() {
		t.Errorf("replay = (%d, %d), live game = (%d, %d)",
			res.Score, res.Moves, game.Score(), game.Moves())
	}
}

func TestVerifyRejections(t *testing.T) {
	cases := []struct {
		name    string
		journal Journal
		maxOps  int
		want    error
	}{
		{
			name:    "unknown op",
			journal: Journal{Seed: 1, Ops: []Op{{Op: "peek"}}},
			want:    ErrReplayRejected,
		},
		{
			name:    "bad source token",
			journal: Journal{Seed: 1, Ops: []Op{{Op: OpMove, From: "x9", To: "t0"}}},
			want:    ErrReplayRejected,
		},
		{
			name:    "bad target token",
			journal: Journal{Seed: 1, Ops: []Op{{Op: OpMove, From: "w", To: "t7"}}},
			want:    ErrReplayRejected,
		},
		{
			name:    "illegal move",
			journal: Journal{Seed: 1, Ops: []Op{{Op: OpMove, From: "s", To: "t0"}}},
			want:    ErrReplayRejected,
		},
		{
			name:    "undo with no history",
			journal: Journal{Seed: 1, Ops: []Op{{Op: OpUndo}}},
			want:    ErrReplayRejected,
		},
		{
			name:    "too many ops",
			journal: Journal{Seed: 1, Ops: []Op{{Op: OpDraw}, {Op: OpDraw}, {Op: OpDraw}}},
			maxOps:  2,
			want:    ErrReplayTooLong,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Verify(tc.journal, tc.maxOps)
			if !errors.Is(err, tc.want) {
				t.Errorf("Verify() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRefTokenRoundTrip(t *testing.T) {
	refs := []domain.StackRef{
		domain.StockRef(),
		domain.WasteRef(),
		domain.TableauRef(0),
		domain.TableauRef(6),
		domain.FoundationRef(0),
		domain.FoundationRef(3),
	}
	for _, ref := range refs {
		token := RefToken(ref)
		got, err := ParseRef(token)
		if err != nil {
			t.Errorf("ParseRef(%q) error: %v", token, err)
			continue
		}
		if got != ref {
			t.Errorf("ParseRef(%q) = %v, want %v", token, got, ref)
		}
	}
}

func TestParseRefRejectsBadTokens(t *testing.T) {
	for _, token := range []string{"", "t", "t7", "t-1", "f4", "w2", "s0", "z3", "tx", "10"} {
		if _, err := ParseRef(token); err == nil {
			t.Errorf("ParseRef(%q) succeeded, want error", token)
		}
	}
}
