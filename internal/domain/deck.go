package domain

import (
	"fmt"
	"math/rand"
)

// NewDeck returns the catalog shuffled with rng.
func NewDeck(rng *rand.Rand) []Card {
	deck := Catalog()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// DealResult is the partition of one deck.
type DealResult struct {
	Hands [][]Card
	Table []Card
	Stock []Card
}

// dealRound is one pass of the dealer: hand cards per seat in order, then table cards.
type dealRound struct {
	seatOrder []int
	perHand   int
	toTable   int
}

func dealPattern(playerCount int) ([]dealRound, error) {
	switch playerCount {
	case 2:
		r := dealRound{seatOrder: []int{1, 0}, perHand: 5, toTable: 4}
		return []dealRound{r, r}, nil
	case 3:
		seats := []int{0, 1, 2}
		return []dealRound{
			{seatOrder: seats, perHand: 4, toTable: 3},
			{seatOrder: seats, perHand: 3, toTable: 3},
		}, nil
	case 4:
		seats := []int{0, 1, 2, 3}
		return []dealRound{
			{seatOrder: seats, perHand: 3, toTable: 4},
			{seatOrder: seats, perHand: 2, toTable: 4},
		}, nil
	default:
		return nil, fmt.Errorf("%w: got %d", ErrPlayerCount, playerCount)
	}
}

// Deal partitions deck into hands, table and stock for playerCount seats.
// The deck must hold all 48 cards; table cards come out face up.
func Deal(deck []Card, playerCount int) (DealResult, error) {
	rounds, err := dealPattern(playerCount)
	if err != nil {
		return DealResult{}, err
	}
	if len(deck) != DeckSize {
		return DealResult{}, fmt.Errorf("deal: deck has %d cards, want %d", len(deck), DeckSize)
	}

	idx := 0
	draw := func(n int) []Card {
		out := append([]Card(nil), deck[idx:idx+n]...)
		idx += n
		return out
	}

	res := DealResult{Hands: make([][]Card, playerCount)}
	for _, r := range rounds {
		for _, seat := range r.seatOrder {
			res.Hands[seat] = append(res.Hands[seat], draw(r.perHand)...)
		}
		res.Table = append(res.Table, draw(r.toTable)...)
	}
	for i := range res.Table {
		res.Table[i].FaceUp = true
	}
	res.Stock = append([]Card(nil), deck[idx:]...)
	return res, nil
}

// GroupIntoStacks builds the initial layout: one stack per month, in order
// of first appearance. A month dealt four times yields a 4-card stack, which
// only the initial check may observe.
func GroupIntoStacks(cards []Card) []TableStack {
	var layout []TableStack
	pos := make(map[Month]int)
	for _, c := range cards {
		if i, ok := pos[c.Month]; ok {
			layout[i].Cards = append(layout[i].Cards, c)
			continue
		}
		pos[c.Month] = len(layout)
		layout = append(layout, TableStack{Month: c.Month, Cards: []Card{c}})
	}
	return layout
}

// drawFromStock pops the top stock card face up. ok is false on an empty stock.
func drawFromStock(stock []Card) (drawn Card, rest []Card, ok bool) {
	if len(stock) == 0 {
		return Card{}, stock, false
	}
	drawn = stock[0]
	drawn.FaceUp = true
	return drawn, stock[1:], true
}
