package game

import (
	"math/rand"
)

// Card is a rank token followed by a one-letter suit token, e.g. "10H", "QS".
// No suit token collides with a rank token, so the last byte is always the suit.
type Card string

// NoTrump marks rounds played without a trump suit.
const NoTrump = "NT"

var suits = []string{"H", "D", "C", "S"}

var ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// Suit returns the one-letter suit token of the card.
func (c Card) Suit() string {
	if len(c) < 2 {
		return ""
	}
	return string(c[len(c)-1:])
}

// Rank returns the rank token of the card.
func (c Card) Rank() string {
	if len(c) < 2 {
		return ""
	}
	return string(c[:len(c)-1])
}

// Valid reports whether the card is one of the 52 deck cards.
func (c Card) Valid() bool {
	return RankOrder(c) >= 0 && validSuit(c.Suit())
}

func validSuit(s string) bool {
	for _, v := range suits {
		if v == s {
			return true
		}
	}
	return false
}

// RankOrder returns the card's position in the fixed rank sequence 2..A
// (0–12), or -1 for an unknown rank. Only meaningful for same-suit comparison.
func RankOrder(c Card) int {
	r := c.Rank()
	for i, v := range ranks {
		if v == r {
			return i
		}
	}
	return -1
}

// NewShuffledDeck returns the 52 distinct cards uniformly permuted.
// Non-cryptographic fairness is sufficient here.
func NewShuffledDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range suits {
		for _, r := range ranks {
			deck = append(deck, Card(r+s))
		}
	}
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// TrickPlay is one (player, card) entry of a trick, in play order.
type TrickPlay struct {
	PlayerID string `json:"playerId"`
	Card     Card   `json:"card"`
}

// beats reports whether card a beats card b given the lead suit and trump.
// Same suit: higher rank wins. Otherwise trump beats non-trump, and a
// lead-suit card beats a card matching neither lead nor trump.
func beats(a, b Card, leadSuit, trump string) bool {
	suitA, suitB := a.Suit(), b.Suit()
	if suitA == suitB {
		return RankOrder(a) > RankOrder(b)
	}
	if trump != NoTrump {
		if suitA == trump {
			return true
		}
		if suitB == trump {
			return false
		}
	}
	return suitA == leadSuit
}

// TrickWinner folds over the trick and returns the id of the player whose
// card wins. Ties are impossible: no two cards share rank and suit.
func TrickWinner(trick []TrickPlay, leadSuit, trump string) string {
	if len(trick) == 0 {
		return ""
	}
	winner := trick[0].PlayerID
	best := trick[0].Card
	for _, tp := range trick[1:] {
		if beats(tp.Card, best, leadSuit, trump) {
			best = tp.Card
			winner = tp.PlayerID
		}
	}
	return winner
}
