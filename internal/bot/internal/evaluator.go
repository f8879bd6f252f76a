package internal

import "gostop/internal/domain"

const (
	ValueBright     = 10
	ValueBird       = 6
	ValueSakeCup    = 5
	ValueAnimal     = 4
	ValueRibbon     = 3
	ValueDoubleJunk = 2
	ValueJunk       = 1
)

// CardValue ranks a card as a capture target. Higher is better.
func CardValue(c domain.Card) int {
	switch c.Category {
	case domain.CategoryBright:
		return ValueBright
	case domain.CategoryAnimal:
		switch {
		case c.IsBird:
			return ValueBird
		case c.IsSakeCup:
			return ValueSakeCup
		default:
			return ValueAnimal
		}
	case domain.CategoryRibbon:
		return ValueRibbon
	default:
		if c.IsDoubleJunk {
			return ValueDoubleJunk
		}
		return ValueJunk
	}
}

// StackValue sums CardValue over cards.
func StackValue(cards []domain.Card) int {
	total := 0
	for _, c := range cards {
		total += CardValue(c)
	}
	return total
}

// BestTarget returns the most valuable of choices. Ties keep the earliest.
func BestTarget(choices []domain.Card) (domain.Card, bool) {
	if len(choices) == 0 {
		return domain.Card{}, false
	}
	best := choices[0]
	for _, c := range choices[1:] {
		if CardValue(c) > CardValue(best) {
			best = c
		}
	}
	return best, true
}

// MatchedValue is the value of the table cards card would meet.
func MatchedValue(m domain.Match, layout []domain.TableStack) int {
	total := 0
	for _, i := range m.Stacks {
		total += StackValue(layout[i].Cards)
	}
	return total
}
