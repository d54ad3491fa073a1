package game

// RoundSizes is the fixed per-round card count sequence. The game always
// plays exactly len(RoundSizes) rounds.
var RoundSizes = []int{7, 6, 5, 4, 3, 2, 1, 1, 2, 3, 4, 5, 6, 7}

// TrumpOrder is the fixed trump cycle, indexed by round number.
var TrumpOrder = []string{"H", "C", "D", "S", NoTrump}

// Phase of a room or of the round it is playing.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseBidding  Phase = "bidding"
	PhasePlaying  Phase = "playing"
	PhaseComplete Phase = "complete"
	PhaseFinished Phase = "finished"
)

// TrumpLabel is the display form of a trump token.
func TrumpLabel(t string) string {
	if t == NoTrump {
		return "No Trump"
	}
	return t
}

// Round owns deal/bid/play progression for a single round. The turn pointers
// (BidOrder/BidIndex, PlayOrder/PlayIndex) are the single authoritative
// "whose turn" fact; they are never inferred from other state.
type Round struct {
	Index    int
	Size     int
	Trump    string
	DealerID string
	Variant  Variant

	Hands     map[string][]Card
	Bids      map[string]int
	TricksWon map[string]int

	CurrentTrick []TrickPlay

	BidOrder  []string
	BidIndex  int
	PlayOrder []string
	PlayIndex int

	Phase Phase
}

// StartRound deals a new round. players is the seating order, dealerIndex an
// index into it, and leaderID the player who leads the first trick ("" means
// left of the dealer). Dealing begins left of the dealer, one card at a time
// around the table; trump cycles with the round index.
func StartRound(players []string, dealerIndex, roundIndex int, v Variant, leaderID string) *Round {
	n := len(players)
	size := RoundSizes[roundIndex]
	dealerID := players[dealerIndex%n]
	leftOfDealer := players[(dealerIndex+1)%n]

	r := &Round{
		Index:     roundIndex,
		Size:      size,
		Trump:     TrumpOrder[roundIndex%len(TrumpOrder)],
		DealerID:  dealerID,
		Variant:   v,
		Hands:     make(map[string][]Card, n),
		Bids:      make(map[string]int, n),
		TricksWon: make(map[string]int, n),
	}

	deck := NewShuffledDeck()
	for _, id := range players {
		r.Hands[id] = make([]Card, 0, size)
		r.TricksWon[id] = 0
	}
	for i := 0; i < size; i++ {
		for j := 0; j < n; j++ {
			id := players[(dealerIndex+1+j)%n]
			top := deck[len(deck)-1]
			deck = deck[:len(deck)-1]
			r.Hands[id] = append(r.Hands[id], top)
		}
	}

	if leaderID == "" {
		leaderID = leftOfDealer
	}
	r.PlayOrder = RotateToFirst(players, leaderID)
	r.PlayIndex = 0

	if v.NeedsBids() {
		r.BidOrder = RotateToFirst(players, leftOfDealer)
		r.BidIndex = 0
		r.Phase = PhaseBidding
	} else {
		r.Phase = PhasePlaying
	}
	return r
}

// CurrentBidderID returns the player whose turn it is to bid.
func (r *Round) CurrentBidderID() (string, bool) {
	if r.Phase != PhaseBidding || r.BidIndex >= len(r.BidOrder) {
		return "", false
	}
	return r.BidOrder[r.BidIndex], true
}

// CurrentPlayerID returns the player whose turn it is to play a card.
func (r *Round) CurrentPlayerID() (string, bool) {
	if r.Phase != PhasePlaying || len(r.PlayOrder) == 0 {
		return "", false
	}
	return r.PlayOrder[r.PlayIndex], true
}

// LeadSuit is the suit of the first card of the trick in progress, or ""
// when no trick is underway.
func (r *Round) LeadSuit() string {
	if len(r.CurrentTrick) == 0 {
		return ""
	}
	return r.CurrentTrick[0].Card.Suit()
}

func (r *Round) bidTotal() int {
	total := 0
	for _, b := range r.Bids {
		total += b
	}
	return total
}

// HandleBid validates and records a bid. The dealer bids last and may never
// make the total of all bids equal the number of tricks available.
func (r *Round) HandleBid(playerID string, bid int) error {
	if r.Phase != PhaseBidding {
		return PhaseErr("no bidding in progress")
	}
	expected, _ := r.CurrentBidderID()
	if playerID != expected {
		return TurnErr("not your turn to bid")
	}
	if playerID == r.DealerID && r.bidTotal()+bid == r.Size {
		return RuleErr("dealer cannot make total bids equal total tricks")
	}
	if bid < 0 || bid > r.Size {
		return RuleErr("bid must be between 0 and %d", r.Size)
	}

	r.Bids[playerID] = bid
	r.BidIndex++
	if r.BidIndex >= len(r.BidOrder) {
		r.Phase = PhasePlaying
	}
	return nil
}

// TrickResult reports a resolved trick.
type TrickResult struct {
	WinnerID string
	Trick    []TrickPlay
}

// HandlePlay validates and records a card play. When the play completes the
// trick, the trick is resolved, the winner leads the next one and the
// result is returned; otherwise the result is nil. Entering PhaseComplete
// means all hands are empty and the round is ready to finalize.
func (r *Round) HandlePlay(playerID string, card Card) (*TrickResult, error) {
	if r.Phase != PhasePlaying {
		return nil, PhaseErr("no play in progress")
	}
	expected, _ := r.CurrentPlayerID()
	if playerID != expected {
		return nil, TurnErr("not your turn to play")
	}
	hand := r.Hands[playerID]
	idx := -1
	for i, c := range hand {
		if c == card {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, RuleErr("card not in your hand")
	}
	if lead := r.LeadSuit(); lead != "" && card.Suit() != lead {
		for _, c := range hand {
			if c.Suit() == lead {
				return nil, RuleErr("must follow suit %s", lead)
			}
		}
	}

	r.Hands[playerID] = append(hand[:idx], hand[idx+1:]...)
	r.CurrentTrick = append(r.CurrentTrick, TrickPlay{PlayerID: playerID, Card: card})
	r.PlayIndex = (r.PlayIndex + 1) % len(r.PlayOrder)

	if len(r.CurrentTrick) < len(r.PlayOrder) {
		return nil, nil
	}

	leadSuit := r.CurrentTrick[0].Card.Suit()
	winner := TrickWinner(r.CurrentTrick, leadSuit, r.Trump)
	r.TricksWon[winner]++
	result := &TrickResult{WinnerID: winner, Trick: r.CurrentTrick}
	r.CurrentTrick = nil
	r.PlayOrder = RotateToFirst(r.PlayOrder, winner)
	r.PlayIndex = 0

	for _, h := range r.Hands {
		if len(h) > 0 {
			return result, nil
		}
	}
	r.Phase = PhaseComplete
	return result, nil
}

// AutoBid is the bid the engine submits on the bidder's behalf when the
// turn deadline expires: 0, or 1 when the dealer constraint forbids 0.
func (r *Round) AutoBid(playerID string) int {
	if playerID == r.DealerID && r.bidTotal() == r.Size {
		return 1
	}
	return 0
}

// AutoPlay is the card the engine plays on the player's behalf when the
// turn deadline expires: the first legal card in hand.
func (r *Round) AutoPlay(playerID string) (Card, bool) {
	hand := r.Hands[playerID]
	if len(hand) == 0 {
		return "", false
	}
	if lead := r.LeadSuit(); lead != "" {
		for _, c := range hand {
			if c.Suit() == lead {
				return c, true
			}
		}
	}
	return hand[0], true
}

// HistoryEntry is the immutable record of one completed round.
type HistoryEntry struct {
	Round  int            `json:"round"` // 1-based
	Cards  int            `json:"cards"`
	Trump  string         `json:"trump"`
	Bids   map[string]int `json:"bids"`
	Won    map[string]int `json:"won"`
	Delta  map[string]int `json:"delta"`
	Totals map[string]int `json:"totals"`
	Game   string         `json:"game"`
}

// MostTricksWinner returns the player with strictly the most tricks won,
// or "" on a tie. The winner leads the first trick of the next round.
func MostTricksWinner(playerIDs []string, tricksWon map[string]int) string {
	bestID, best, tie := "", -1, false
	for _, id := range playerIDs {
		w := tricksWon[id]
		if w > best {
			best, bestID, tie = w, id, false
		} else if w == best {
			tie = true
		}
	}
	if tie {
		return ""
	}
	return bestID
}
