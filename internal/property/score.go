package property

// Scorer ranks properties for outreach priority. Scores are a presentation
// concern and never affect whether a contact may be messaged.
type Scorer interface {
	Score(p *Property) int
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(p *Property) int

// Score calls f(p).
func (f ScorerFunc) Score(p *Property) int { return f(p) }

// DefaultScorer is an additive score favoring larger multi-family and
// commercial buildings, high equity, distress flags and absentee owners.
type DefaultScorer struct{}

var flagPoints = []struct {
	flag   string
	points int
}{
	{"High Equity", 15},
	{"Absentee Owner", 15},
	{"Corporate Owner", 10},
	{"Tax Delinquent", 20},
	{"Pre-foreclosure", 25},
	{"Cash Buyer", 5},
}

// Score implements Scorer.
func (DefaultScorer) Score(p *Property) int {
	if p == nil {
		return 0
	}
	score := 0

	switch p.Type {
	case TypeMultiFamily:
		score += 30
	case TypeCommercial:
		score += 25
	}

	switch units := valueOr(p.Units, 0); {
	case units >= 20:
		score += 25
	case units >= 10:
		score += 20
	case units >= 5:
		score += 15
	}

	if p.EquityPercent != nil {
		switch eq := *p.EquityPercent; {
		case eq >= 80:
			score += 25
		case eq >= 70:
			score += 20
		case eq >= 50:
			score += 15
		case eq >= 30:
			score += 10
		}
	}

	for _, fp := range flagPoints {
		if p.HasFlag(fp.flag) {
			score += fp.points
		}
	}

	if p.EstimatedValue != nil {
		switch v := *p.EstimatedValue; {
		case v >= 5_000_000:
			score += 20
		case v >= 2_000_000:
			score += 15
		case v >= 1_000_000:
			score += 10
		case v >= 500_000:
			score += 5
		}
	}

	if p.OutOfStateOwner {
		score += 10
	}
	if p.CorporateOwner {
		score += 10
	}

	return score
}
