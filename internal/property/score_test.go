package property

import "testing"

func TestDefaultScorer(t *testing.T) {
	tests := []struct {
		name string
		p    *Property
		want int
	}{
		{"nil", nil, 0},
		{"bare single family", &Property{Type: TypeSingleFamily}, 0},
		{
			name: "mid-size apartment building",
			p: &Property{
				Type:          TypeMultiFamily,
				Units:         ptr(int64(12)),
				EquityPercent: ptr(72.0),
			},
			want: 30 + 20 + 20,
		},
		{
			name: "distressed commercial with absentee corporate owner",
			p: &Property{
				Type:            TypeCommercial,
				Flags:           []string{"tax delinquent", "Pre-foreclosure", "Absentee Owner"},
				EstimatedValue:  ptr(2_500_000.0),
				CorporateOwner:  true,
				OutOfStateOwner: true,
			},
			want: 25 + 20 + 25 + 15 + 15 + 10 + 10,
		},
		{
			name: "value and equity bands",
			p: &Property{
				Type:           TypeSingleFamily,
				EquityPercent:  ptr(30.0),
				EstimatedValue: ptr(500_000.0),
			},
			want: 10 + 5,
		},
	}

	var s Scorer = DefaultScorer{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Score(tt.p); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScorerFunc(t *testing.T) {
	var s Scorer = ScorerFunc(func(p *Property) int { return len(p.Flags) })
	if got := s.Score(&Property{Flags: []string{"a", "b"}}); got != 2 {
		t.Errorf("Score() = %d, want 2", got)
	}
}
