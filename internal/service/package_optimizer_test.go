package service

import (
	"math"
	"testing"

	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineCounts(sel model.Selection) map[string]int {
	got := make(map[string]int, len(sel.Lines))
	for _, l := range sel.Lines {
		got[l.PackageID] += l.PackageCount
	}
	return got
}

func TestNewPackageOptimizerService(t *testing.T) {
	tests := []struct {
		name    string
		options []OptimizerOption
		want    int
	}{
		{name: "default bound", options: nil, want: DefaultMaxCountPerCandidate},
		{name: "custom bound", options: []OptimizerOption{WithMaxCountPerCandidate(25)}, want: 25},
		{name: "non-positive bound ignored", options: []OptimizerOption{WithMaxCountPerCandidate(0)}, want: DefaultMaxCountPerCandidate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPackageOptimizerService(tt.options...).maxCount)
		})
	}
}

func TestPackageOptimizerService_Optimize(t *testing.T) {
	svc := NewPackageOptimizerService()
	generous := DefaultCriteria()
	generous.MaxOverfillPercent = 100

	tests := []struct {
		name         string
		req          model.QuantityRequirement
		candidates   []model.PackageCandidate
		criteria     Criteria
		wantLines    map[string]int
		wantScore    float64
		wantDegraded bool
	}{
		{
			name:       "exact single package scores zero",
			req:        requirement("90", "tablet"),
			candidates: []model.PackageCandidate{active("P30", "30"), active("P90", "90")},
			criteria:   DefaultCriteria(),
			wantLines:  map[string]int{"P90": 1},
			wantScore:  0,
		},
		{
			name:       "zero waste outranks fewer packages with waste",
			req:        requirement("60", "tablet"),
			candidates: []model.PackageCandidate{active("P65", "65"), active("P30", "30")},
			criteria:   generous,
			wantLines:  map[string]int{"P30": 2},
			wantScore:  0,
		},
		{
			name:       "equal waste ranks by package count",
			req:        requirement("50", "tablet"),
			candidates: []model.PackageCandidate{active("P30", "30"), active("P60", "60")},
			criteria:   DefaultCriteria(),
			wantLines:  map[string]int{"P60": 1},
			wantScore:  20,
		},
		{
			name:       "mixed pair fills exactly",
			req:        requirement("80", "tablet"),
			candidates: []model.PackageCandidate{active("P30", "30"), active("P50", "50")},
			criteria:   DefaultCriteria(),
			wantLines:  map[string]int{"P30": 1, "P50": 1},
			wantScore:  0,
		},
		{
			name:       "inactive packages are never used",
			req:        requirement("30", "tablet"),
			candidates: []model.PackageCandidate{candidate("P30", "30", "tablet", model.StatusInactive), active("P35", "35")},
			criteria:   DefaultCriteria(),
			wantLines:  map[string]int{"P35": 1},
			wantScore:  15,
		},
		{
			name:         "no overfill allowed falls back to largest package",
			req:          requirement("55", "tablet"),
			candidates:   []model.PackageCandidate{active("P30", "30"), active("P20", "20")},
			criteria:     Criteria{MinimizeCount: true, MinimizeWaste: true, AllowOverfill: false},
			wantLines:    map[string]int{"P30": 2},
			wantScore:    math.Inf(1),
			wantDegraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.Optimize(tt.req, tt.candidates, tt.criteria)

			assert.Equal(t, tt.wantLines, lineCounts(res.Selection))
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, tt.wantDegraded, res.Degraded())
			assert.True(t, res.Selection.TotalSupplied.GreaterThanOrEqual(tt.req.TotalQuantity))
		})
	}
}

func TestPackageOptimizerService_Degenerate(t *testing.T) {
	svc := NewPackageOptimizerService()

	t.Run("zero requirement", func(t *testing.T) {
		res := svc.Optimize(requirement("0", "tablet"), []model.PackageCandidate{active("P30", "30")}, DefaultCriteria())
		assert.True(t, res.Selection.IsEmpty())
		assert.True(t, res.Degraded())
	})

	t.Run("no active candidates", func(t *testing.T) {
		res := svc.Optimize(requirement("30", "tablet"), []model.PackageCandidate{
			candidate("P30", "30", "tablet", model.StatusInactive),
		}, DefaultCriteria())
		assert.True(t, res.Selection.IsEmpty())
		assert.True(t, res.Degraded())
	})
}

func TestPackageOptimizerService_SearchBound(t *testing.T) {
	candidates := []model.PackageCandidate{active("P30", "30")}
	req := requirement("90", "tablet")

	bounded := NewPackageOptimizerService(WithMaxCountPerCandidate(1)).Optimize(req, candidates, DefaultCriteria())
	assert.True(t, bounded.Degraded())
	assert.Equal(t, map[string]int{"P30": 3}, lineCounts(bounded.Selection))

	unbounded := NewPackageOptimizerService().Optimize(req, candidates, DefaultCriteria())
	assert.False(t, unbounded.Degraded())
	assert.Equal(t, float64(0), unbounded.Score)
	assert.Equal(t, map[string]int{"P30": 3}, lineCounts(unbounded.Selection))
}

func TestPackageOptimizerService_OverfillOnLastLine(t *testing.T) {
	svc := NewPackageOptimizerService()
	generous := DefaultCriteria()
	generous.MaxOverfillPercent = 100

	res := svc.Optimize(requirement("70", "tablet"), []model.PackageCandidate{active("P30", "30"), active("P50", "50")}, generous)
	require.NotEmpty(t, res.Selection.Lines)

	last := res.Selection.Lines[len(res.Selection.Lines)-1]
	assert.True(t, res.Selection.TotalWaste.Equal(last.Overfill))
	for _, l := range res.Selection.Lines[:len(res.Selection.Lines)-1] {
		assert.True(t, l.Overfill.IsZero())
	}
}

func TestPackageOptimizerService_Deterministic(t *testing.T) {
	svc := NewPackageOptimizerService()
	candidates := []model.PackageCandidate{active("A", "14"), active("B", "28"), active("C", "56"), active("D", "56")}

	for total := 1; total <= 300; total += 7 {
		req := requirement(decFromInt(total).String(), "tablet")
		first := svc.Optimize(req, candidates, DefaultCriteria())
		second := svc.Optimize(req, candidates, DefaultCriteria())
		assert.Equal(t, first, second, "total %d", total)
		assert.NotContains(t, lineCounts(first.Selection), "D", "equal sizes resolve to the first candidate")
	}
}
