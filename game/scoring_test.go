package game

import (
	"testing"
)

func TestScoreRound_ContractExactBid(t *testing.T) {
	delta := VariantContract.ScoreRound(
		[]string{"P1"},
		map[string]int{"P1": 3},
		map[string]int{"P1": 3},
	)
	if delta["P1"] != 13 {
		t.Errorf("Expected delta 13 for exact bid, got %d", delta["P1"])
	}
}

func TestScoreRound_ContractMissedBid(t *testing.T) {
	delta := VariantContract.ScoreRound(
		[]string{"P1"},
		map[string]int{"P1": 3},
		map[string]int{"P1": 2},
	)
	if delta["P1"] != 2 {
		t.Errorf("Expected delta 2 for missed bid, got %d", delta["P1"])
	}
}

func TestScoreRound_ContractZeroBidZeroWon(t *testing.T) {
	delta := VariantContract.ScoreRound(
		[]string{"P1"},
		map[string]int{"P1": 0},
		map[string]int{"P1": 0},
	)
	if delta["P1"] != 10 {
		t.Errorf("Expected delta 10 for fulfilled zero bid, got %d", delta["P1"])
	}
}

func TestScoreRound_TrickHigh(t *testing.T) {
	delta := VariantTrickHigh.ScoreRound(
		[]string{"P1", "P2"},
		nil, // no bids exist for this variant
		map[string]int{"P1": 4, "P2": 0},
	)
	if delta["P1"] != 4 || delta["P2"] != 0 {
		t.Errorf("Expected raw trick deltas, got %v", delta)
	}
}

func TestVariant_NeedsBids(t *testing.T) {
	if !VariantContract.NeedsBids() {
		t.Error("Contract should need bids")
	}
	if VariantTrickHigh.NeedsBids() {
		t.Error("Trick High should not need bids")
	}
}

func TestVariant_Valid(t *testing.T) {
	if !VariantContract.Valid() || !VariantTrickHigh.Valid() {
		t.Error("Known variants should be valid")
	}
	if Variant("poker").Valid() {
		t.Error("Unknown variant should be invalid")
	}
}
