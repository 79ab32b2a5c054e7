// Package codec serializes game snapshots into a compact tagged binary
// blob. The layout follows the protobuf wire format so the blob stays
// decodable when fields are added later: unknown field numbers are skipped
// on decode, and a format version field guards incompatible changes.
//
// Every card packs into one byte: rank in the low nibble, suit in bits
// 4-5, the face-up flag in bit 6. Piles are written as one bytes field per
// slot in the canonical snapshot order, so pile kinds are implied and never
// serialized.
package codec

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"klondike/internal/domain"
)

// ErrMalformed reports a blob that cannot be decoded. The decoder never
// panics on untrusted input.
var ErrMalformed = errors.New("malformed game blob")

// formatVersion is bumped when the layout changes incompatibly.
const formatVersion = 1

// Snapshot field numbers.
const (
	fieldVersion      = 1
	fieldPile         = 2
	fieldScore        = 3
	fieldMoves        = 4
	fieldStatus       = 5
	fieldSeed         = 6
	fieldHistoryLimit = 7
	fieldRecord       = 8
)

// History record field numbers.
const (
	recKind        = 1
	recCards       = 2
	recSourceKind  = 3
	recSourceIndex = 4
	recTargetKind  = 5
	recTargetIndex = 6
	recFlipped     = 7
	recScoreDelta  = 8
)

// Decoder sanity caps. Counters and history sizes far beyond anything the
// engine can produce are treated as damage rather than allocated.
const (
	maxCounter = 1 << 30
	maxRecords = 1 << 12
)

// Encode packs a snapshot into its binary form.
func Encode(snap domain.Snapshot) []byte {
	b := protowire.AppendTag(nil, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, formatVersion)
	for i := range snap.Piles {
		b = protowire.AppendTag(b, fieldPile, protowire.BytesType)
		b = protowire.AppendBytes(b, packCards(snap.Piles[i].Cards))
	}
	b = protowire.AppendTag(b, fieldScore, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(snap.Score))
	b = protowire.AppendTag(b, fieldMoves, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(snap.Moves))
	b = protowire.AppendTag(b, fieldStatus, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(snap.Status))
	b = protowire.AppendTag(b, fieldSeed, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(snap.Seed))
	limit := snap.HistoryLimit
	if limit < 0 {
		limit = 0
	}
	b = protowire.AppendTag(b, fieldHistoryLimit, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(limit))
	for _, rec := range snap.History {
		b = protowire.AppendTag(b, fieldRecord, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeRecord(rec))
	}
	return b
}

// Decode unpacks a blob produced by Encode. It checks structure only; run
// the result through domain.Restore to enforce the game invariants.
func Decode(blob []byte) (domain.Snapshot, error) {
	var snap domain.Snapshot
	var version uint64
	piles := 0

	b := blob
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			version = v
		case num == fieldPile && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			if piles >= domain.PileSlots {
				return domain.Snapshot{}, fmt.Errorf("%w: more than %d piles", ErrMalformed, domain.PileSlots)
			}
			cards, err := unpackCards(raw)
			if err != nil {
				return domain.Snapshot{}, err
			}
			snap.Piles[piles] = domain.Pile{Kind: domain.SlotKind(piles), Cards: cards}
			piles++
		case num == fieldScore && typ == protowire.VarintType:
			v, n, err := consumeCounter(b)
			if err != nil {
				return domain.Snapshot{}, err
			}
			b = b[n:]
			snap.Score = v
		case num == fieldMoves && typ == protowire.VarintType:
			v, n, err := consumeCounter(b)
			if err != nil {
				return domain.Snapshot{}, err
			}
			b = b[n:]
			snap.Moves = v
		case num == fieldStatus && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			if v > uint64(domain.Won) {
				return domain.Snapshot{}, fmt.Errorf("%w: status %d", ErrMalformed, v)
			}
			snap.Status = domain.Status(v)
		case num == fieldSeed && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			snap.Seed = protowire.DecodeZigZag(v)
		case num == fieldHistoryLimit && typ == protowire.VarintType:
			v, n, err := consumeCounter(b)
			if err != nil {
				return domain.Snapshot{}, err
			}
			b = b[n:]
			snap.HistoryLimit = v
		case num == fieldRecord && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			if len(snap.History) >= maxRecords {
				return domain.Snapshot{}, fmt.Errorf("%w: more than %d history records", ErrMalformed, maxRecords)
			}
			rec, err := decodeRecord(raw)
			if err != nil {
				return domain.Snapshot{}, err
			}
			snap.History = append(snap.History, rec)
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if version != formatVersion {
		return domain.Snapshot{}, fmt.Errorf("%w: format version %d", ErrMalformed, version)
	}
	if piles != domain.PileSlots {
		return domain.Snapshot{}, fmt.Errorf("%w: %d piles, want %d", ErrMalformed, piles, domain.PileSlots)
	}
	return snap, nil
}

func encodeRecord(rec domain.MoveRecord) []byte {
	b := protowire.AppendTag(nil, recKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(rec.Kind))
	b = protowire.AppendTag(b, recCards, protowire.BytesType)
	b = protowire.AppendBytes(b, packCards(rec.Cards))
	b = protowire.AppendTag(b, recSourceKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(rec.Source.Kind))
	b = protowire.AppendTag(b, recSourceIndex, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(rec.Source.Index))
	b = protowire.AppendTag(b, recTargetKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(rec.Target.Kind))
	b = protowire.AppendTag(b, recTargetIndex, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(rec.Target.Index))
	if rec.Flipped {
		b = protowire.AppendTag(b, recFlipped, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	b = protowire.AppendTag(b, recScoreDelta, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(rec.ScoreDelta)))
	return b
}

func decodeRecord(raw []byte) (domain.MoveRecord, error) {
	var rec domain.MoveRecord

	b := raw
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return domain.MoveRecord{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == recCards && typ == protowire.BytesType:
			cardBytes, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return domain.MoveRecord{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			cards, err := unpackCards(cardBytes)
			if err != nil {
				return domain.MoveRecord{}, err
			}
			rec.Cards = cards
		case typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return domain.MoveRecord{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			switch num {
			case recKind:
				if v > uint64(domain.MoveTransfer) {
					return domain.MoveRecord{}, fmt.Errorf("%w: move kind %d", ErrMalformed, v)
				}
				rec.Kind = domain.MoveKind(v)
			case recSourceKind:
				kind, err := pileKind(v)
				if err != nil {
					return domain.MoveRecord{}, err
				}
				rec.Source.Kind = kind
			case recSourceIndex:
				if v >= maxCounter {
					return domain.MoveRecord{}, fmt.Errorf("%w: pile index %d", ErrMalformed, v)
				}
				rec.Source.Index = int(v)
			case recTargetKind:
				kind, err := pileKind(v)
				if err != nil {
					return domain.MoveRecord{}, err
				}
				rec.Target.Kind = kind
			case recTargetIndex:
				if v >= maxCounter {
					return domain.MoveRecord{}, fmt.Errorf("%w: pile index %d", ErrMalformed, v)
				}
				rec.Target.Index = int(v)
			case recFlipped:
				rec.Flipped = v != 0
			case recScoreDelta:
				rec.ScoreDelta = int(protowire.DecodeZigZag(v))
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return domain.MoveRecord{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return rec, nil
}

func consumeCounter(b []byte) (int, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
	}
	if v >= maxCounter {
		return 0, 0, fmt.Errorf("%w: counter %d", ErrMalformed, v)
	}
	return int(v), n, nil
}

func pileKind(v uint64) (domain.PileKind, error) {
	if v > uint64(domain.FoundationPile) {
		return 0, fmt.Errorf("%w: pile kind %d", ErrMalformed, v)
	}
	return domain.PileKind(v), nil
}

const (
	cardRankMask = 0x0f
	cardSuitMask = 0x30
	cardFaceBit  = 1 << 6
)

func packCards(cards []domain.Card) []byte {
	if len(cards) == 0 {
		return nil
	}
	out := make([]byte, len(cards))
	for i, c := range cards {
		b := byte(c.Rank) | byte(c.Suit)<<4
		if c.FaceUp {
			b |= cardFaceBit
		}
		out[i] = b
	}
	return out
}

func unpackCards(raw []byte) ([]domain.Card, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if len(raw) > domain.DeckSize {
		return nil, fmt.Errorf("%w: pile of %d cards", ErrMalformed, len(raw))
	}
	out := make([]domain.Card, len(raw))
	for i, b := range raw {
		c := domain.Card{
			Rank:   domain.Rank(b & cardRankMask),
			Suit:   domain.Suit((b & cardSuitMask) >> 4),
			FaceUp: b&cardFaceBit != 0,
		}
		if b&^(cardRankMask|cardSuitMask|cardFaceBit) != 0 || c.Rank < domain.Ace || c.Rank > domain.King {
			return nil, fmt.Errorf("%w: card byte 0x%02x", ErrMalformed, b)
		}
		out[i] = c
	}
	return out, nil
}
