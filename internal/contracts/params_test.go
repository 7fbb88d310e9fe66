package contracts

import (
	"errors"
	"testing"
)

func TestScoringParameters_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ScoringParameters)
		wantErr bool
	}{
		{
			name:    "defaults pass",
			mutate:  func(p *ScoringParameters) {},
			wantErr: false,
		},
		{
			name:    "alpha above cap",
			mutate:  func(p *ScoringParameters) { p.ThemeAlpha = 0.6 },
			wantErr: true,
		},
		{
			name:    "negative alpha",
			mutate:  func(p *ScoringParameters) { p.ThemeAlpha = -0.1 },
			wantErr: true,
		},
		{
			name:    "alpha at cap",
			mutate:  func(p *ScoringParameters) { p.ThemeAlpha = 0.5 },
			wantErr: false,
		},
		{
			name: "weights not summing to one",
			mutate: func(p *ScoringParameters) {
				p.Weights = Weights{VolumeRatio: 0.5, TurnoverRate: 0.5, GapPercent: 0.5, Amount: 0.5}
			},
			wantErr: true,
		},
		{
			name: "negative weight",
			mutate: func(p *ScoringParameters) {
				p.Weights = Weights{VolumeRatio: 1.2, TurnoverRate: -0.2, GapPercent: 0, Amount: 0}
			},
			wantErr: true,
		},
		{
			name:    "unknown sort mode",
			mutate:  func(p *ScoringParameters) { p.SortMode = "alphabetical" },
			wantErr: true,
		},
		{
			name:    "heat_desc sort mode",
			mutate:  func(p *ScoringParameters) { p.SortMode = SortHeatDesc },
			wantErr: false,
		},
		{
			name:    "zero rolling window",
			mutate:  func(p *ScoringParameters) { p.RollingWindowDays = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultScoringParameters()
			tt.mutate(&params)

			err := params.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !errors.Is(err, ErrInvalidParameter) {
					t.Errorf("error %v should wrap ErrInvalidParameter", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDefaultWeights_SumToOne(t *testing.T) {
	w := DefaultWeights()
	if sum := w.Sum(); sum < 0.999 || sum > 1.001 {
		t.Errorf("default weights sum = %v, want 1.0", sum)
	}
}
