package session

import "sort"

type Suit string

const (
	Bastoni Suit = "Bastoni"
	Kope    Suit = "Kope"
	Denari  Suit = "Denari"
	Spade   Suit = "Spade"
)

// Display order for hand sorting. Strength within a suit comes from Order.
var suitRank = map[Suit]int{Bastoni: 1, Kope: 2, Denari: 3, Spade: 4}

// Card mirrors the server's wire shape: the server marshals an untagged
// struct, so the JSON keys are Suit/Rank/Order. Extra fields (Value) are
// ignored on decode. Identity is (Suit, Rank).
type Card struct {
	Suit  Suit   `json:"Suit"`
	Rank  string `json:"Rank"`
	Order int    `json:"Order"`
}

func (c Card) Same(other Card) bool {
	return c.Suit == other.Suit && c.Rank == other.Rank
}

func (c Card) String() string {
	return c.Rank + " of " + string(c.Suit)
}

// SortHand orders cards by suit then strength for stable display.
func SortHand(hand []Card) {
	sort.SliceStable(hand, func(i, j int) bool {
		if suitRank[hand[i].Suit] != suitRank[hand[j].Suit] {
			return suitRank[hand[i].Suit] < suitRank[hand[j].Suit]
		}
		return hand[i].Order < hand[j].Order
	})
}

// LegalMoves computes the playable subset of hand against the current table.
// Leading allows anything. Following restricts to the led suit; with none of
// the led suit, any discard is legal. Pure function of (hand, table).
func LegalMoves(hand, table []Card) []Card {
	if len(table) == 0 {
		return append([]Card(nil), hand...)
	}
	led := table[0].Suit
	var moves []Card
	for _, c := range hand {
		if c.Suit == led {
			moves = append(moves, c)
		}
	}
	if len(moves) == 0 {
		return append([]Card(nil), hand...)
	}
	return moves
}

func containsCard(cards []Card, c Card) bool {
	for _, have := range cards {
		if have.Same(c) {
			return true
		}
	}
	return false
}

func removeCard(cards []Card, c Card) ([]Card, bool) {
	for i, have := range cards {
		if have.Same(c) {
			return append(cards[:i:i], cards[i+1:]...), true
		}
	}
	return cards, false
}
