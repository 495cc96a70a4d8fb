package session

type DeclarationType string

const (
	DeclNapola      DeclarationType = "napola"
	DeclFourOfAKind DeclarationType = "four_of_a_kind"
)

// Declaration is one entry of the fixed catalog. Napola entries carry the
// suit, of-a-kind entries carry the rank; the other field stays zero.
type Declaration struct {
	Type  DeclarationType
	Suit  Suit
	Rank  string
	Label string
}

// catalog is the full set of declarable combinations: one napola per suit
// plus the three/four-of-a-kind ranks. The client never checks whether the
// hand actually holds the combination; that is the server's call.
var catalog = []Declaration{
	{Type: DeclNapola, Suit: Bastoni, Label: "Napola di Bastoni"},
	{Type: DeclNapola, Suit: Kope, Label: "Napola di Kope"},
	{Type: DeclNapola, Suit: Denari, Label: "Napola di Denari"},
	{Type: DeclNapola, Suit: Spade, Label: "Napola di Spade"},
	{Type: DeclFourOfAKind, Rank: "1", Label: "Three/four Aces"},
	{Type: DeclFourOfAKind, Rank: "2", Label: "Three/four Twos"},
	{Type: DeclFourOfAKind, Rank: "3", Label: "Three/four Threes"},
}

// Catalog returns a copy of the static declaration catalog.
func Catalog() []Declaration {
	return append([]Declaration(nil), catalog...)
}

// InCatalog reports whether a declaration matches a catalog entry.
func InCatalog(d Declaration) bool {
	for _, entry := range catalog {
		if entry.Type == d.Type && entry.Suit == d.Suit && entry.Rank == d.Rank {
			return true
		}
	}
	return false
}

// CanDeclare reports whether the declare affordance is open: the round's
// first own turn, before the first confirmed play.
func (s State) CanDeclare() bool {
	return s.Phase == PhaseRoundActive && s.DeclarationOpen && !s.FirstPlayDone && s.IsSelfTurn()
}
