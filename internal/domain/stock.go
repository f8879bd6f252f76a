package domain

import "fmt"

// StockResolution is the outcome of resolving a drawn stock card.
type StockResolution struct {
	Layout      []TableStack
	Captured    []Card
	NeedsChoice bool
	Options     []Card
	// Event is the single special event of the draw, or "" for none.
	// A triple capture reports EventPpuk; the caller upgrades it to ja-ppuk.
	Event SpecialEventKind
	// CreatedPpuk is set when the draw turned the pending pair into a 3-stack.
	CreatedPpuk bool
	// TripleMonth is the month of a 3-stack the draw captured, 0 otherwise.
	TripleMonth Month
}

// ResolveStock resolves stock against layout. The pending stack, if any, is
// the one the hand card landed on this turn. A pending pair the stock card
// does not claim is captured along the way. An ambiguous match without
// targetID asks for a choice and changes nothing; a targetID outside the
// remaining candidates is rejected.
func ResolveStock(stock Card, layout []TableStack, targetID string) (StockResolution, error) {
	stock.FaceUp = true
	h := pendingStack(layout)
	hs := 0
	if h >= 0 {
		hs = len(layout[h].Cards)
	}
	m := Classify(stock, layout)

	var res StockResolution
	switch m.Kind {
	case MatchNone:
		res = resolveNone(stock, layout, h, hs)
	case MatchTriple:
		res = resolveTriple(stock, layout, m.Stacks[0], h, hs)
	case MatchSingle:
		res = resolveSingle(stock, layout, m.Stacks[0], h, hs)
	case MatchDouble:
		var err error
		res, err = resolveDouble(stock, layout, m.Stacks, h, hs, targetID)
		if err != nil {
			return StockResolution{}, err
		}
	default:
		panic(fmt.Sprintf("invariant: unhandled match kind %v", m.Kind))
	}

	if !res.NeedsChoice {
		checkLayout(res.Layout)
	}
	return res, nil
}

func resolveNone(stock Card, layout []TableStack, h, hs int) StockResolution {
	var res StockResolution
	if h >= 0 && hs == 2 {
		res.Captured = append(res.Captured, layout[h].Cards...)
		res.Layout = withoutStacks(layout, h)
	} else {
		res.Layout = cloneLayout(layout)
	}
	res.Layout = append(res.Layout, TableStack{Month: stock.Month, Cards: []Card{stock}})
	if len(res.Captured) > 0 && len(res.Layout) == 1 {
		res.Event = EventSseul
	}
	return res
}

func resolveTriple(stock Card, layout []TableStack, t, h, hs int) StockResolution {
	res := StockResolution{Captured: append(append([]Card(nil), layout[t].Cards...), stock)}
	if t == h {
		res.Layout = withoutStacks(layout, t)
		res.Event = EventTtadak
		return res
	}
	res.TripleMonth = layout[t].Month
	res.Event = EventPpuk
	if h >= 0 && hs >= 2 {
		res.Captured = append(res.Captured, layout[h].Cards...)
		res.Layout = withoutStacks(layout, t, h)
		return res
	}
	res.Layout = withoutStacks(layout, t)
	return res
}

func resolveSingle(stock Card, layout []TableStack, s, h, hs int) StockResolution {
	var res StockResolution
	if s == h {
		switch hs {
		case 1:
			res.Captured = append(append([]Card(nil), layout[s].Cards...), stock)
			res.Layout = withoutStacks(layout, s)
			res.Event = EventChok
		case 2:
			res.Layout = cloneLayout(layout)
			res.Layout[s].Cards = append(res.Layout[s].Cards, stock)
			res.Event = EventPpuk
			res.CreatedPpuk = true
		default:
			panic(fmt.Sprintf("invariant: single match on pending stack of %d cards", hs))
		}
		return res
	}

	res.Captured = append(append([]Card(nil), layout[s].Cards...), stock)
	if h >= 0 && hs == 2 {
		res.Captured = append(res.Captured, layout[h].Cards...)
		res.Layout = withoutStacks(layout, s, h)
	} else {
		res.Layout = withoutStacks(layout, s)
	}
	if len(res.Layout) == 0 {
		res.Event = EventSseul
	}
	return res
}

func resolveDouble(stock Card, layout []TableStack, candidates []int, h, hs int, targetID string) (StockResolution, error) {
	pairClaimed := h >= 0 && hs == 2
	remaining := candidates
	if pairClaimed {
		remaining = nil
		for _, i := range candidates {
			if i != h {
				remaining = append(remaining, i)
			}
		}
	}

	var target int
	switch {
	case len(remaining) == 1:
		target = remaining[0]
	case targetID == "":
		return StockResolution{
			Layout:      cloneLayout(layout),
			NeedsChoice: true,
			Options:     stackCards(layout, remaining),
		}, nil
	default:
		var ok bool
		target, ok = stackHolding(layout, remaining, targetID)
		if !ok {
			return StockResolution{}, fmt.Errorf("%w: %s", ErrInvalidCaptureTarget, targetID)
		}
	}

	res := StockResolution{Captured: append(append([]Card(nil), layout[target].Cards...), stock)}
	if pairClaimed && h != target {
		res.Captured = append(res.Captured, layout[h].Cards...)
		res.Layout = withoutStacks(layout, target, h)
	} else {
		res.Layout = withoutStacks(layout, target)
	}
	if len(res.Layout) == 0 {
		res.Event = EventSseul
	}
	return res, nil
}

// StockChoiceOptions lists the cards the drawn stock card may target, or nil
// when the draw resolves without a choice.
func StockChoiceOptions(stock Card, layout []TableStack) []Card {
	res, err := ResolveStock(stock, layout, "")
	if err != nil || !res.NeedsChoice {
		return nil
	}
	return res.Options
}
