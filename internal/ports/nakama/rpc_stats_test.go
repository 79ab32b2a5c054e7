package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"klondike/internal/ports"
)

func TestStatsReportsAggregates(t *testing.T) {
	d, _, stats, _ := testDeps()
	stats.stats = ports.Stats{
		GamesPlayed: 4,
		GamesWon:    1,
		BestScore:   480,
		TotalScore:  900,
		TotalMoves:  400,
	}

	out, err := statsOp(testCtx("user-1"), d)
	if err != nil {
		t.Fatalf("statsOp returned error: %v", err)
	}

	var resp statsResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	want := statsResponse{
		GamesPlayed: 4,
		GamesWon:    1,
		BestScore:   480,
		TotalScore:  900,
		TotalMoves:  400,
	}
	if resp != want {
		t.Fatalf("Stats response = %+v, want %+v", resp, want)
	}
}

func TestStatsRequiresCaller(t *testing.T) {
	d, _, _, _ := testDeps()

	if _, err := statsOp(context.Background(), d); err == nil {
		t.Fatal("Expected an error without a user in context")
	}
}
