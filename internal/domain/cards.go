package domain

import (
	"fmt"
	"sort"
)

// Month is one of the twelve hwatu suits, 1 through 12.
type Month int

// Category is the rank category of a card.
type Category string

const (
	CategoryBright Category = "bright"
	CategoryAnimal Category = "animal"
	CategoryRibbon Category = "ribbon"
	CategoryJunk   Category = "junk"
)

// RibbonKind tags which ribbon set a ribbon card contributes to.
type RibbonKind string

const (
	RibbonRedPoem  RibbonKind = "red-poem"  // hongdan
	RibbonBlue     RibbonKind = "blue"      // cheongdan
	RibbonRedPlain RibbonKind = "red-plain" // chodan
	RibbonOther    RibbonKind = "other"
)

const (
	MonthCount    = 12
	CardsPerMonth = 4
	DeckSize      = MonthCount * CardsPerMonth

	RainMonth Month = 12
)

var (
	GodoriMonths    = []Month{2, 4, 8}
	HongDanMonths   = []Month{1, 2, 3}
	CheongDanMonths = []Month{6, 9, 10}
	ChoDanMonths    = []Month{4, 5, 7}
	BrightMonths    = []Month{1, 3, 8, 11, 12}
)

var monthFlowers = [MonthCount + 1]string{
	"", "Pine", "Plum", "Cherry", "Wisteria", "Iris", "Peony",
	"Bush Clover", "Pampas", "Chrysanthemum", "Maple", "Paulownia", "Willow",
}

// Flower returns the flower name of the month, or "" when out of range.
func (m Month) Flower() string {
	if m < 1 || m > MonthCount {
		return ""
	}
	return monthFlowers[m]
}

// Valid reports whether m is a real month.
func (m Month) Valid() bool {
	return m >= 1 && m <= MonthCount
}

// Card is one hwatu card. ID doubles as the runtime instance id since the
// catalog holds every card exactly once.
type Card struct {
	ID           string     `json:"id"`
	Month        Month      `json:"month"`
	Category     Category   `json:"type"`
	Name         string     `json:"name"`
	Flower       string     `json:"flower"`
	FaceUp       bool       `json:"faceUp"`
	IsBird       bool       `json:"isBird,omitempty"`
	IsSakeCup    bool       `json:"isSakeCup,omitempty"`
	IsDoubleJunk bool       `json:"isDoubleJunk,omitempty"`
	RibbonKind   RibbonKind `json:"ribbonKind,omitempty"`
}

// JunkValue is what the card contributes to a junk count.
func (c Card) JunkValue() int {
	if c.IsDoubleJunk {
		return 2
	}
	return 1
}

func (c Card) String() string {
	return c.ID
}

func bright(m Month, name string) Card {
	return Card{ID: fmt.Sprintf("%d-bright", m), Month: m, Category: CategoryBright, Name: name, Flower: m.Flower()}
}

func animal(m Month, name string) Card {
	return Card{ID: fmt.Sprintf("%d-animal", m), Month: m, Category: CategoryAnimal, Name: name, Flower: m.Flower()}
}

func bird(m Month, name string) Card {
	c := animal(m, name)
	c.IsBird = true
	return c
}

func ribbon(m Month, name string, kind RibbonKind) Card {
	return Card{ID: fmt.Sprintf("%d-ribbon", m), Month: m, Category: CategoryRibbon, Name: name, Flower: m.Flower(), RibbonKind: kind}
}

func junk(m Month, i int) Card {
	return Card{ID: fmt.Sprintf("%d-junk-%d", m, i), Month: m, Category: CategoryJunk, Name: m.Flower() + " Junk", Flower: m.Flower()}
}

func doubleJunk(m Month, i int) Card {
	c := junk(m, i)
	c.IsDoubleJunk = true
	c.Name = "Double Junk"
	return c
}

// catalog is built once; Catalog hands out copies.
var catalog = buildCatalog()

var catalogIndex = func() map[string]int {
	idx := make(map[string]int, len(catalog))
	for i, c := range catalog {
		idx[c.ID] = i
	}
	return idx
}()

func buildCatalog() []Card {
	sake := animal(9, "Sake Cup")
	sake.IsSakeCup = true

	return []Card{
		bright(1, "Crane & Sun"), ribbon(1, "Red Poem Ribbon", RibbonRedPoem), junk(1, 1), junk(1, 2),
		bird(2, "Nightingale"), ribbon(2, "Red Poem Ribbon", RibbonRedPoem), junk(2, 1), junk(2, 2),
		bright(3, "Cherry Curtain"), ribbon(3, "Red Poem Ribbon", RibbonRedPoem), junk(3, 1), junk(3, 2),
		bird(4, "Cuckoo"), ribbon(4, "Red Plain Ribbon", RibbonRedPlain), junk(4, 1), junk(4, 2),
		animal(5, "Bridge"), ribbon(5, "Red Plain Ribbon", RibbonRedPlain), junk(5, 1), junk(5, 2),
		animal(6, "Butterflies"), ribbon(6, "Blue Ribbon", RibbonBlue), junk(6, 1), junk(6, 2),
		animal(7, "Boar"), ribbon(7, "Red Plain Ribbon", RibbonRedPlain), junk(7, 1), junk(7, 2),
		bright(8, "Full Moon"), bird(8, "Geese"), junk(8, 1), junk(8, 2),
		sake, ribbon(9, "Blue Ribbon", RibbonBlue), junk(9, 1), junk(9, 2),
		animal(10, "Deer"), ribbon(10, "Blue Ribbon", RibbonBlue), junk(10, 1), junk(10, 2),
		bright(11, "Phoenix"), doubleJunk(11, 1), junk(11, 2), junk(11, 3),
		bright(12, "Rain Man"), bird(12, "Swallow"), ribbon(12, "Willow Ribbon", RibbonOther), doubleJunk(12, 1),
	}
}

// Catalog returns a fresh copy of the 48-card deck in catalog order.
func Catalog() []Card {
	out := make([]Card, len(catalog))
	copy(out, catalog)
	return out
}

// CardByID looks up a catalog card.
func CardByID(id string) (Card, bool) {
	i, ok := catalogIndex[id]
	if !ok {
		return Card{}, false
	}
	return catalog[i], true
}

// CardsOfMonth returns the catalog cards of one month.
func CardsOfMonth(m Month) []Card {
	var out []Card
	for _, c := range catalog {
		if c.Month == m {
			out = append(out, c)
		}
	}
	return out
}

// SortHand orders cards by month, then by category value, then id.
func SortHand(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Month != cards[j].Month {
			return cards[i].Month < cards[j].Month
		}
		return catalogIndex[cards[i].ID] < catalogIndex[cards[j].ID]
	})
}

func containsMonth(months []Month, m Month) bool {
	for _, x := range months {
		if x == m {
			return true
		}
	}
	return false
}
