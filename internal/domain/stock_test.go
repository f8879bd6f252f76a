package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStock(t *testing.T) {
	tests := []struct {
		name        string
		layout      []TableStack
		stock       string
		captured    []string
		left        []Month
		event       SpecialEventKind
		createdPpuk bool
		tripleMonth Month
	}{
		{
			name:     "no match captures pending pair",
			layout:   []TableStack{pending(t, "1-bright", "1-junk-1"), stack(t, "3-bright")},
			stock:    "5-animal",
			captured: []string{"1-bright", "1-junk-1"},
			left:     []Month{3, 5},
		},
		{
			name:     "no match leaving only the stock card is sseul",
			layout:   []TableStack{pending(t, "1-bright", "1-junk-1")},
			stock:    "5-animal",
			captured: []string{"1-bright", "1-junk-1"},
			left:     []Month{5},
			event:    EventSseul,
		},
		{
			name:   "no match with unpaired hand card",
			layout: []TableStack{pending(t, "1-bright"), stack(t, "3-bright")},
			stock:  "5-animal",
			left:   []Month{1, 3, 5},
		},
		{
			name:   "no match keeps pending three stack",
			layout: []TableStack{pending(t, "1-bright", "1-junk-1", "1-junk-2")},
			stock:  "5-animal",
			left:   []Month{1, 5},
		},
		{
			name:        "triple on another stack is ppuk and takes the pair",
			layout:      []TableStack{stack(t, "2-animal", "2-ribbon", "2-junk-1"), pending(t, "1-bright", "1-junk-1"), stack(t, "3-bright")},
			stock:       "2-junk-2",
			captured:    []string{"2-animal", "2-ribbon", "2-junk-1", "2-junk-2", "1-bright", "1-junk-1"},
			left:        []Month{3},
			event:       EventPpuk,
			tripleMonth: 2,
		},
		{
			name:     "triple on the hand stack is ttadak",
			layout:   []TableStack{pending(t, "4-animal", "4-ribbon", "4-junk-1"), stack(t, "6-animal")},
			stock:    "4-junk-2",
			captured: []string{"4-animal", "4-ribbon", "4-junk-1", "4-junk-2"},
			left:     []Month{6},
			event:    EventTtadak,
		},
		{
			name:     "stock takes the unmatched hand card is chok",
			layout:   []TableStack{pending(t, "5-animal"), stack(t, "6-animal")},
			stock:    "5-ribbon",
			captured: []string{"5-animal", "5-ribbon"},
			left:     []Month{6},
			event:    EventChok,
		},
		{
			name:        "stock on the hand pair makes ppuk",
			layout:      []TableStack{pending(t, "5-animal", "5-ribbon"), stack(t, "6-animal")},
			stock:       "5-junk-1",
			left:        []Month{5, 6},
			event:       EventPpuk,
			createdPpuk: true,
		},
		{
			name:     "stock matches another stack and the pair is taken too",
			layout:   []TableStack{pending(t, "1-bright", "1-junk-1"), stack(t, "3-bright"), stack(t, "6-animal")},
			stock:    "3-ribbon",
			captured: []string{"3-bright", "3-ribbon", "1-bright", "1-junk-1"},
			left:     []Month{6},
		},
		{
			name:     "capture emptying the table is sseul",
			layout:   []TableStack{pending(t, "1-bright", "1-junk-1"), stack(t, "3-bright")},
			stock:    "3-ribbon",
			captured: []string{"3-bright", "3-ribbon", "1-bright", "1-junk-1"},
			event:    EventSseul,
		},
		{
			name:     "double with the hand pair among candidates resolves itself",
			layout:   []TableStack{pending(t, "7-animal", "7-ribbon"), stack(t, "7-junk-1")},
			stock:    "7-junk-2",
			captured: []string{"7-junk-1", "7-junk-2", "7-animal", "7-ribbon"},
			event:    EventSseul,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := cloneLayout(tt.layout)
			res, err := ResolveStock(card(t, tt.stock), tt.layout, "")
			require.NoError(t, err)
			require.False(t, res.NeedsChoice)

			assert.ElementsMatch(t, tt.captured, ids(res.Captured))
			var left []Month
			for _, st := range res.Layout {
				left = append(left, st.Month)
			}
			assert.Equal(t, tt.left, left)
			assert.Equal(t, tt.event, res.Event)
			assert.Equal(t, tt.createdPpuk, res.CreatedPpuk)
			assert.Equal(t, tt.tripleMonth, res.TripleMonth)
			assert.Equal(t, before, tt.layout, "input layout untouched")
			requireStackSizes(t, res.Layout)
		})
	}
}

func TestResolveStockDoubleChoice(t *testing.T) {
	layout := []TableStack{stack(t, "7-animal"), stack(t, "7-ribbon"), pending(t, "1-bright", "1-junk-1")}
	stock := card(t, "7-junk-1")

	res, err := ResolveStock(stock, layout, "")
	require.NoError(t, err)
	require.True(t, res.NeedsChoice)
	assert.Equal(t, []string{"7-animal", "7-ribbon"}, ids(res.Options))
	assert.Empty(t, res.Captured)
	assert.Equal(t, ids(res.Options), ids(StockChoiceOptions(stock, layout)))

	_, err = ResolveStock(stock, layout, "1-bright")
	assert.ErrorIs(t, err, ErrInvalidTarget)

	res, err = ResolveStock(stock, layout, "7-ribbon")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"7-ribbon", "7-junk-1", "1-bright", "1-junk-1"}, ids(res.Captured))
	require.Len(t, res.Layout, 1)
	assert.Equal(t, []string{"7-animal"}, ids(res.Layout[0].Cards))
	assert.Equal(t, SpecialEventKind(""), res.Event)
}

func TestResolveStockDoubleSkipsHandPairOption(t *testing.T) {
	layout := []TableStack{pending(t, "7-animal", "7-ribbon"), stack(t, "7-junk-1"), stack(t, "3-bright")}
	res, err := ResolveStock(card(t, "7-junk-2"), layout, "")
	require.NoError(t, err)
	assert.False(t, res.NeedsChoice)
	assert.Len(t, res.Captured, 4)
	assert.Equal(t, SpecialEventKind(""), res.Event)
}

func TestStockChoiceOptionsWithoutChoice(t *testing.T) {
	assert.Nil(t, StockChoiceOptions(card(t, "5-animal"), []TableStack{stack(t, "3-bright")}))
}
