package domain

// monthCounts tallies cards per month.
func monthCounts(cards []Card) map[Month]int {
	counts := make(map[Month]int)
	for _, c := range cards {
		counts[c.Month]++
	}
	return counts
}

// FindQuads returns months with all four cards in hand, ascending.
func FindQuads(hand []Card) []Month {
	return monthsWith(hand, func(n int) bool { return n == CardsPerMonth })
}

// FindTriples returns months with at least three cards in hand, ascending.
func FindTriples(hand []Card) []Month {
	return monthsWith(hand, func(n int) bool { return n >= 3 })
}

// FindBombs returns months with exactly three cards in hand and a table stack
// of the same month.
func FindBombs(hand []Card, layout []TableStack) []Month {
	var out []Month
	for _, m := range monthsWith(hand, func(n int) bool { return n == 3 }) {
		if stackIndexOfMonth(layout, m) >= 0 {
			out = append(out, m)
		}
	}
	return out
}

func monthsWith(hand []Card, pred func(int) bool) []Month {
	counts := monthCounts(hand)
	var out []Month
	for m := Month(1); m <= MonthCount; m++ {
		if pred(counts[m]) {
			out = append(out, m)
		}
	}
	return out
}

func cardIndex(cards []Card, id string) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// removeCard returns cards without the card at index i.
func removeCard(cards []Card, i int) []Card {
	out := make([]Card, 0, len(cards)-1)
	out = append(out, cards[:i]...)
	return append(out, cards[i+1:]...)
}
