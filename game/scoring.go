package game

// Variant is a pluggable scoring ruleset sharing the same deal/trick
// mechanics. The set is closed: adding a variant means adding a case below.
type Variant string

const (
	// VariantContract rewards exact bid fulfillment: 10+tricks when the bid
	// is hit, raw tricks otherwise.
	VariantContract Variant = "contract"
	// VariantTrickHigh scores raw tricks and has no bidding phase.
	VariantTrickHigh Variant = "trickhigh"
)

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	switch v {
	case VariantContract, VariantTrickHigh:
		return true
	}
	return false
}

// Name is the display name of the variant.
func (v Variant) Name() string {
	switch v {
	case VariantTrickHigh:
		return "Trick High"
	default:
		return "Contract"
	}
}

// NeedsBids reports whether the variant runs a bidding sub-phase.
func (v Variant) NeedsBids() bool {
	return v != VariantTrickHigh
}

// ScoreRound computes each player's score delta for a completed round.
// Deltas are never negative: a missed contract earns raw tricks with no
// penalty beyond the lost bonus.
func (v Variant) ScoreRound(playerIDs []string, bids, tricksWon map[string]int) map[string]int {
	delta := make(map[string]int, len(playerIDs))
	for _, id := range playerIDs {
		won := tricksWon[id]
		switch v {
		case VariantTrickHigh:
			delta[id] = won
		default:
			if bids[id] == won {
				delta[id] = 10 + won
			} else {
				delta[id] = won
			}
		}
	}
	return delta
}
