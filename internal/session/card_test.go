package session

import (
	"reflect"
	"testing"
)

func card(suit Suit, rank string, order int) Card {
	return Card{Suit: suit, Rank: rank, Order: order}
}

func TestLegalMoves(t *testing.T) {
	hand := []Card{
		card(Bastoni, "3", 10),
		card(Bastoni, "7", 4),
		card(Denari, "1", 8),
		card(Spade, "12", 6),
	}

	cases := []struct {
		name  string
		hand  []Card
		table []Card
		want  []Card
	}{
		{
			name:  "leading allows anything",
			hand:  hand,
			table: nil,
			want:  hand,
		},
		{
			name:  "following restricts to led suit",
			hand:  hand,
			table: []Card{card(Bastoni, "5", 2)},
			want:  []Card{card(Bastoni, "3", 10), card(Bastoni, "7", 4)},
		},
		{
			name:  "void in led suit frees the whole hand",
			hand:  hand,
			table: []Card{card(Kope, "2", 9)},
			want:  hand,
		},
		{
			name:  "only first table card decides the led suit",
			hand:  hand,
			table: []Card{card(Denari, "4", 1), card(Bastoni, "3", 10)},
			want:  []Card{card(Denari, "1", 8)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LegalMoves(tc.hand, tc.table)
			if len(got) == 0 {
				t.Fatalf("legal moves must never be empty for a non-empty hand")
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for _, c := range got {
				if !containsCard(tc.hand, c) {
					t.Fatalf("legal move %v not a subset of hand", c)
				}
			}
		})
	}
}

func TestLegalMoves_DoesNotAliasHand(t *testing.T) {
	hand := []Card{card(Bastoni, "3", 10), card(Kope, "1", 8)}
	got := LegalMoves(hand, nil)
	got[0] = card(Spade, "4", 1)
	if hand[0] != card(Bastoni, "3", 10) {
		t.Fatalf("LegalMoves mutated the hand")
	}
}

func TestSortHand(t *testing.T) {
	hand := []Card{
		card(Spade, "3", 10),
		card(Bastoni, "3", 10),
		card(Bastoni, "4", 1),
		card(Kope, "1", 8),
		card(Denari, "13", 7),
	}
	SortHand(hand)

	want := []Card{
		card(Bastoni, "4", 1),
		card(Bastoni, "3", 10),
		card(Kope, "1", 8),
		card(Denari, "13", 7),
		card(Spade, "3", 10),
	}
	if !reflect.DeepEqual(hand, want) {
		t.Fatalf("got %v, want %v", hand, want)
	}
}

func TestRemoveCard(t *testing.T) {
	hand := []Card{card(Bastoni, "3", 10), card(Kope, "1", 8)}

	next, ok := removeCard(hand, card(Kope, "1", 8))
	if !ok || len(next) != 1 || !next[0].Same(card(Bastoni, "3", 10)) {
		t.Fatalf("remove failed: %v ok=%v", next, ok)
	}

	if _, ok := removeCard(hand, card(Spade, "7", 4)); ok {
		t.Fatalf("removed a card that was never held")
	}
}
