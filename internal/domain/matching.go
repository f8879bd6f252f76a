package domain

import "fmt"

// MatchKind classifies how a card meets the layout.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchSingle
	MatchDouble
	MatchTriple
)

func (k MatchKind) String() string {
	switch k {
	case MatchNone:
		return "none"
	case MatchSingle:
		return "single"
	case MatchDouble:
		return "double"
	case MatchTriple:
		return "triple"
	default:
		return fmt.Sprintf("MatchKind(%d)", int(k))
	}
}

// Match is the result of Classify. Stacks holds layout indices: the single
// or triple stack, or every ambiguous stack for a double.
type Match struct {
	Kind   MatchKind
	Stacks []int
}

// Classify looks up the stacks sharing card's month.
func Classify(card Card, layout []TableStack) Match {
	var hits []int
	for i, st := range layout {
		if st.Month == card.Month {
			hits = append(hits, i)
		}
	}
	if len(hits) == 0 {
		return Match{Kind: MatchNone}
	}
	for _, i := range hits {
		if len(layout[i].Cards) >= 3 {
			return Match{Kind: MatchTriple, Stacks: []int{i}}
		}
	}
	if len(hits) >= 2 {
		return Match{Kind: MatchDouble, Stacks: hits}
	}
	return Match{Kind: MatchSingle, Stacks: hits}
}

// Placement is the outcome of placing a hand card on the layout.
type Placement struct {
	Layout      []TableStack
	Captured    []Card
	NeedsChoice bool
	Options     []Card
}

// Apply places card on a copy of layout. A card left on the table marks its
// stack Pending so the stock draw can claim the pair. A double match without
// targetID asks for a choice and leaves the layout as is; a targetID outside
// the ambiguous stacks is rejected.
func Apply(card Card, layout []TableStack, targetID string) (Placement, error) {
	m := Classify(card, layout)
	card.FaceUp = true

	switch m.Kind {
	case MatchNone:
		out := cloneLayout(layout)
		out = append(out, TableStack{Month: card.Month, Cards: []Card{card}, Pending: true})
		return Placement{Layout: out}, nil

	case MatchSingle:
		return Placement{Layout: placeOn(layout, m.Stacks[0], card)}, nil

	case MatchDouble:
		if targetID == "" {
			return Placement{
				Layout:      cloneLayout(layout),
				NeedsChoice: true,
				Options:     stackCards(layout, m.Stacks),
			}, nil
		}
		target, ok := stackHolding(layout, m.Stacks, targetID)
		if !ok {
			return Placement{}, fmt.Errorf("%w: %s", ErrInvalidCaptureTarget, targetID)
		}
		return Placement{Layout: placeOn(layout, target, card)}, nil

	case MatchTriple:
		t := m.Stacks[0]
		captured := append(append([]Card(nil), layout[t].Cards...), card)
		return Placement{Layout: withoutStacks(layout, t), Captured: captured}, nil

	default:
		panic(fmt.Sprintf("invariant: unhandled match kind %v", m.Kind))
	}
}

// ChoiceOptions lists the cards a player may target with card on layout, or
// nil when the match is not ambiguous.
func ChoiceOptions(card Card, layout []TableStack) []Card {
	m := Classify(card, layout)
	if m.Kind != MatchDouble {
		return nil
	}
	return stackCards(layout, m.Stacks)
}

func placeOn(layout []TableStack, i int, card Card) []TableStack {
	out := cloneLayout(layout)
	out[i].Cards = append(out[i].Cards, card)
	out[i].Pending = true
	return out
}

func stackCards(layout []TableStack, idx []int) []Card {
	var out []Card
	for _, i := range idx {
		out = append(out, layout[i].Cards...)
	}
	return out
}

func stackHolding(layout []TableStack, candidates []int, cardID string) (int, bool) {
	for _, i := range candidates {
		if cardIndex(layout[i].Cards, cardID) >= 0 {
			return i, true
		}
	}
	return -1, false
}

// withoutStacks copies layout dropping the given indices.
func withoutStacks(layout []TableStack, drop ...int) []TableStack {
	out := make([]TableStack, 0, len(layout))
next:
	for i, st := range layout {
		for _, d := range drop {
			if d == i {
				continue next
			}
		}
		out = append(out, st.clone())
	}
	return out
}

func pendingStack(layout []TableStack) int {
	for i, st := range layout {
		if st.Pending {
			return i
		}
	}
	return -1
}

func stackIndexOfMonth(layout []TableStack, m Month) int {
	for i, st := range layout {
		if st.Month == m {
			return i
		}
	}
	return -1
}

func clearPending(layout []TableStack) {
	for i := range layout {
		layout[i].Pending = false
	}
}

// checkLayout panics when a stack is empty, mixes months or outgrows three cards.
func checkLayout(layout []TableStack) {
	for _, st := range layout {
		if n := len(st.Cards); n < 1 || n > 3 {
			panic(fmt.Sprintf("invariant: month %d stack holds %d cards", st.Month, n))
		}
		for _, c := range st.Cards {
			if c.Month != st.Month {
				panic(fmt.Sprintf("invariant: card %s on month %d stack", c.ID, st.Month))
			}
		}
	}
}
