package codec

import (
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"klondike/internal/domain"
)

func mustDraw(t *testing.T, g *domain.Game) {
	t.Helper()
	if _, err := g.Draw(); err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
}

func TestRoundTripFreshGame(t *testing.T) {
	snap := domain.NewGame(42, domain.DefaultHistoryLimit).Snapshot()

	got, err := Decode(Encode(snap))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !reflect.DeepEqual(snap, got) {
		t.Errorf("round trip changed the snapshot\n got: %+v\nwant: %+v", got, snap)
	}
	if _, err := domain.Restore(got); err != nil {
		t.Errorf("decoded snapshot does not restore: %v", err)
	}
}

func TestRoundTripPlayedGame(t *testing.T) {
	g := domain.NewGame(7, domain.DefaultHistoryLimit)
	for i := 0; i < 24; i++ {
		mustDraw(t, g)
	}
	mustDraw(t, g) // stock is empty, this recycles the waste
	mustDraw(t, g)
	if _, err := g.Undo(); err != nil {
		t.Fatalf("Undo() error: %v", err)
	}

	snap := g.Snapshot()
	got, err := Decode(Encode(snap))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !reflect.DeepEqual(snap, got) {
		t.Error("round trip changed the snapshot")
	}
	if got.Score != 20 || got.Moves != 27 {
		t.Errorf("decoded counters = (%d, %d), want (20, 27)", got.Score, got.Moves)
	}

	restored, err := domain.Restore(got)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if restored.HistoryLen() != len(snap.History) {
		t.Errorf("restored history %d records, want %d", restored.HistoryLen(), len(snap.History))
	}
}

func TestRoundTripHistoryRecords(t *testing.T) {
	snap := domain.NewGame(1, domain.DefaultHistoryLimit).Snapshot()
	snap.History = []domain.MoveRecord{
		{
			Kind:       domain.MoveDraw,
			Cards:      []domain.Card{{Rank: domain.Ace, Suit: domain.Spades, FaceUp: true}},
			Source:     domain.StockRef(),
			Target:     domain.WasteRef(),
			ScoreDelta: 5,
		},
		{
			Kind: domain.MoveReset,
			Cards: []domain.Card{
				{Rank: domain.Queen, Suit: domain.Hearts, FaceUp: true},
				{Rank: domain.Rank(10), Suit: domain.Clubs, FaceUp: true},
			},
			Source:     domain.WasteRef(),
			Target:     domain.StockRef(),
			ScoreDelta: -40,
		},
		{
			Kind:       domain.MoveTransfer,
			Cards:      []domain.Card{{Rank: domain.King, Suit: domain.Diamonds, FaceUp: true}},
			Source:     domain.FoundationRef(2),
			Target:     domain.TableauRef(6),
			Flipped:    true,
			ScoreDelta: -15,
		},
	}

	got, err := Decode(Encode(snap))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !reflect.DeepEqual(snap.History, got.History) {
		t.Errorf("history round trip\n got: %+v\nwant: %+v", got.History, snap.History)
	}
}

// validHeader writes a format version and n empty piles, the minimum a
// structurally acceptable blob needs.
func validHeader(version uint64, n int) []byte {
	b := protowire.AppendTag(nil, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, version)
	for i := 0; i < n; i++ {
		b = protowire.AppendTag(b, fieldPile, protowire.BytesType)
		b = protowire.AppendBytes(b, nil)
	}
	return b
}

func TestDecodeRejectsDamage(t *testing.T) {
	pileWith := func(card byte) []byte {
		b := protowire.AppendTag(nil, fieldVersion, protowire.VarintType)
		b = protowire.AppendVarint(b, formatVersion)
		b = protowire.AppendTag(b, fieldPile, protowire.BytesType)
		b = protowire.AppendBytes(b, []byte{card})
		return b
	}
	withVarint := func(b []byte, field protowire.Number, v uint64) []byte {
		b = protowire.AppendTag(b, field, protowire.VarintType)
		return protowire.AppendVarint(b, v)
	}
	withRecord := func(b, rec []byte) []byte {
		b = protowire.AppendTag(b, fieldRecord, protowire.BytesType)
		return protowire.AppendBytes(b, rec)
	}

	cases := []struct {
		name string
		blob []byte
	}{
		{"empty input", nil},
		{"missing version", validHeader(0, domain.PileSlots)},
		{"future version", validHeader(formatVersion+1, domain.PileSlots)},
		{"too few piles", validHeader(formatVersion, domain.PileSlots-1)},
		{"too many piles", validHeader(formatVersion, domain.PileSlots+1)},
		{"zero rank card", pileWith(0x40)},
		{"rank above king", pileWith(0x4e)},
		{"spare bit set", pileWith(0x81)},
		{"status out of range", withVarint(validHeader(formatVersion, domain.PileSlots), fieldStatus, 9)},
		{"score overflow", withVarint(validHeader(formatVersion, domain.PileSlots), fieldScore, 1<<40)},
		{"record kind out of range", withRecord(validHeader(formatVersion, domain.PileSlots), protowire.AppendVarint(protowire.AppendTag(nil, recKind, protowire.VarintType), 9))},
		{"record pile kind out of range", withRecord(validHeader(formatVersion, domain.PileSlots), protowire.AppendVarint(protowire.AppendTag(nil, recSourceKind, protowire.VarintType), 12))},
		{"trailing garbage", append(validHeader(formatVersion, domain.PileSlots), 0xff)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.blob); err == nil {
				t.Error("Decode() accepted a damaged blob")
			}
		})
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	blob := Encode(domain.NewGame(9, 0).Snapshot())
	blob = protowire.AppendTag(blob, 99, protowire.BytesType)
	blob = protowire.AppendBytes(blob, []byte("future extension"))

	got, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if _, err := domain.Restore(got); err != nil {
		t.Errorf("decoded snapshot does not restore: %v", err)
	}
}

func TestDecodeTruncationNeverPanics(t *testing.T) {
	blob := Encode(domain.NewGame(3, domain.DefaultHistoryLimit).Snapshot())
	// Some prefixes are structurally complete blobs with fields missing,
	// so only the absence of panics is asserted here.
	for i := 0; i < len(blob); i++ {
		Decode(blob[:i])
	}
}
