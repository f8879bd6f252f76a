package domain

const (
	JunkThreshold   = 10
	AnimalThreshold = 5
	RibbonThreshold = 5

	PiBakThreshold     = 5
	MeoungDdaThreshold = 7

	godoriBonus     = 5
	ribbonSetBonus  = 3
	fiveBrightScore = 15
)

// ScoreBreakdown itemizes a capture pile's score under one sake-cup valuation.
type ScoreBreakdown struct {
	Total         int  `json:"total"`
	BrightScore   int  `json:"brightScore"`
	BrightSetSize int  `json:"brightSetSize"`
	AnimalScore   int  `json:"animalScore"`
	AnimalCount   int  `json:"animalCount"`
	Godori        bool `json:"godori"`
	RibbonScore   int  `json:"ribbonScore"`
	RibbonCount   int  `json:"ribbonCount"`
	HongDan       bool `json:"hongDan"`
	CheongDan     bool `json:"cheongDan"`
	ChoDan        bool `json:"choDan"`
	JunkScore     int  `json:"junkScore"`
	JunkCount     int  `json:"junkCount"`
	SakeCupAsJunk bool `json:"sakeCupAsJunk"`
}

// CalculateScore scores captured both with the sake cup as an animal and as
// double junk, and keeps the higher total. Ties keep the animal valuation.
func CalculateScore(captured CapturedCards) ScoreBreakdown {
	asAnimal := computeBreakdown(captured, false)
	if !hasSakeCup(captured.Animals) {
		return asAnimal
	}
	asJunk := computeBreakdown(captured, true)
	if asJunk.Total > asAnimal.Total {
		return asJunk
	}
	return asAnimal
}

func hasSakeCup(animals []Card) bool {
	for _, c := range animals {
		if c.IsSakeCup {
			return true
		}
	}
	return false
}

func computeBreakdown(captured CapturedCards, sakeCupAsJunk bool) ScoreBreakdown {
	b := ScoreBreakdown{SakeCupAsJunk: sakeCupAsJunk}

	b.BrightSetSize = len(captured.Brights)
	b.BrightScore = brightScore(captured.Brights)

	var birds []Card
	for _, c := range captured.Animals {
		if sakeCupAsJunk && c.IsSakeCup {
			b.JunkCount += 2
			continue
		}
		b.AnimalCount++
		if c.IsBird && c.Month != RainMonth {
			birds = append(birds, c)
		}
	}
	b.Godori = coversMonths(birds, GodoriMonths)
	b.AnimalScore = overThreshold(b.AnimalCount, AnimalThreshold)
	if b.Godori {
		b.AnimalScore += godoriBonus
	}

	b.RibbonCount = len(captured.Ribbons)
	b.HongDan = coversMonths(captured.Ribbons, HongDanMonths)
	b.CheongDan = coversMonths(captured.Ribbons, CheongDanMonths)
	b.ChoDan = coversMonths(captured.Ribbons, ChoDanMonths)
	b.RibbonScore = overThreshold(b.RibbonCount, RibbonThreshold)
	for _, set := range []bool{b.HongDan, b.CheongDan, b.ChoDan} {
		if set {
			b.RibbonScore += ribbonSetBonus
		}
	}

	for _, c := range captured.Junk {
		b.JunkCount += c.JunkValue()
	}
	b.JunkScore = overThreshold(b.JunkCount, JunkThreshold)

	b.Total = b.BrightScore + b.AnimalScore + b.RibbonScore + b.JunkScore
	return b
}

func brightScore(brights []Card) int {
	switch n := len(brights); {
	case n >= 5:
		return fiveBrightScore
	case n == 4:
		return 4
	case n == 3:
		for _, c := range brights {
			if c.Month == RainMonth {
				return 2
			}
		}
		return 3
	default:
		return 0
	}
}

// overThreshold scores 1 at the threshold and 1 per card beyond it.
func overThreshold(count, threshold int) int {
	if count < threshold {
		return 0
	}
	return 1 + count - threshold
}

func coversMonths(cards []Card, months []Month) bool {
	for _, m := range months {
		found := false
		for _, c := range cards {
			if c.Month == m {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// JunkCount is the junk value of a pile without the sake cup.
func JunkCount(captured CapturedCards) int {
	n := 0
	for _, c := range captured.Junk {
		n += c.JunkValue()
	}
	return n
}
