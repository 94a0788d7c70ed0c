package service

import (
	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/shopspring/decimal"
)

// DefaultMaxCountPerCandidate bounds how many of each package a pair search tries.
const DefaultMaxCountPerCandidate = 10

// countPenalty is the score cost of each package in a wasteful combination.
const countPenalty = 10

var hundred = decimal.NewFromInt(100)

// Criteria tunes the waste/count tradeoff of the optimizer.
type Criteria struct {
	MinimizeCount      bool    `json:"minimize_count"`
	MinimizeWaste      bool    `json:"minimize_waste"`
	AllowOverfill      bool    `json:"allow_overfill"`
	MaxOverfillPercent float64 `json:"max_overfill_percent" validate:"gte=0,lte=1000"`
}

// DefaultCriteria returns the standard optimization criteria.
func DefaultCriteria() Criteria {
	return Criteria{
		MinimizeCount:      true,
		MinimizeWaste:      true,
		AllowOverfill:      true,
		MaxOverfillPercent: 20,
	}
}

// PackageOptimizer searches package combinations for the best-scoring selection.
type PackageOptimizer interface {
	Optimize(req model.QuantityRequirement, candidates []model.PackageCandidate, criteria Criteria) model.OptimizationResult
}

// OptimizerOption configures a PackageOptimizerService.
type OptimizerOption func(*PackageOptimizerService)

// PackageOptimizerService implements PackageOptimizer with a bounded search over
// single packages and pairs of packages.
type PackageOptimizerService struct {
	maxCount int
}

// NewPackageOptimizerService creates a new PackageOptimizerService with the given options.
func NewPackageOptimizerService(opts ...OptimizerOption) *PackageOptimizerService {
	s := &PackageOptimizerService{maxCount: DefaultMaxCountPerCandidate}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithMaxCountPerCandidate sets the per-package count bound of the pair search.
func WithMaxCountPerCandidate(n int) OptimizerOption {
	return func(s *PackageOptimizerService) {
		if n > 0 {
			s.maxCount = n
		}
	}
}

// combination is one scored candidate answer; order records discovery sequence
// so that equal scores resolve to the first one found.
type combination struct {
	lines []model.SelectionLine
	count int
	waste decimal.Decimal
	score float64
	order int
}

func (c *combination) better(other *combination, criteria Criteria) bool {
	if other == nil {
		return true
	}
	if c.score != other.score {
		return c.score < other.score
	}
	if criteria.MinimizeCount && c.count != other.count {
		return c.count < other.count
	}
	return c.order < other.order
}

// Optimize returns the lowest-scoring combination within the overfill tolerance.
// When nothing fits the tolerance it falls back to the largest package repeated
// enough times to cover the requirement, scored +Inf.
func (s *PackageOptimizerService) Optimize(req model.QuantityRequirement, candidates []model.PackageCandidate, criteria Criteria) model.OptimizationResult {
	active := model.ActiveCandidates(candidates)
	if req.IsZero() || len(active) == 0 {
		return model.OptimizationResult{Selection: model.EmptySelection(), Score: model.InfiniteScore}
	}

	total := req.TotalQuantity
	var best *combination
	order := 0

	consider := func(parts ...part) {
		order++
		c, ok := s.evaluate(parts, total, criteria)
		if !ok {
			return
		}
		c.order = order
		if c.better(best, criteria) {
			best = c
		}
	}

	for i := range active {
		if active[i].Size.GreaterThanOrEqual(total) {
			consider(part{active[i], 1})
		}
	}

	for i := range active {
		for j := i; j < len(active); j++ {
			for a := 0; a <= s.maxCount; a++ {
				for b := 0; b <= s.maxCount; b++ {
					if a == 0 && b == 0 {
						continue
					}
					if i == j {
						consider(part{active[i], a + b})
					} else {
						consider(part{active[i], a}, part{active[j], b})
					}
				}
			}
		}
	}

	if best == nil {
		return s.fallback(active, total)
	}

	return model.OptimizationResult{
		Selection: model.NewSelection(best.lines, total, model.Deterministic{}),
		Score:     best.score,
	}
}

type part struct {
	candidate model.PackageCandidate
	count     int
}

func (s *PackageOptimizerService) evaluate(parts []part, total decimal.Decimal, criteria Criteria) (*combination, bool) {
	supplied := decimal.Zero
	count := 0
	for _, p := range parts {
		supplied = supplied.Add(p.candidate.Size.Mul(decimal.NewFromInt(int64(p.count))))
		count += p.count
	}
	if supplied.LessThan(total) {
		return nil, false
	}

	waste := supplied.Sub(total)
	if !withinTolerance(waste, total, criteria) {
		return nil, false
	}

	lines := make([]model.SelectionLine, 0, len(parts))
	for _, p := range parts {
		if p.count > 0 {
			lines = append(lines, model.NewSelectionLine(p.candidate, p.count))
		}
	}
	lines[len(lines)-1].Overfill = waste

	return &combination{
		lines: lines,
		count: count,
		waste: waste,
		score: score(waste, count, criteria),
	}, true
}

func withinTolerance(waste, total decimal.Decimal, criteria Criteria) bool {
	if waste.IsZero() {
		return true
	}
	if !criteria.AllowOverfill {
		return false
	}
	pct := waste.Div(total).Mul(hundred)
	return pct.LessThanOrEqual(decimal.NewFromFloat(criteria.MaxOverfillPercent))
}

// score is the waste plus a per-package penalty that only applies to wasteful
// combinations, so any zero-waste answer outranks any wasteful one.
func score(waste decimal.Decimal, count int, criteria Criteria) float64 {
	var wasteTerm float64
	if criteria.MinimizeWaste {
		wasteTerm = waste.InexactFloat64()
	}
	var countTerm float64
	if criteria.MinimizeCount && wasteTerm > 0 {
		countTerm = float64(count * countPenalty)
	}
	return wasteTerm + countTerm
}

func (s *PackageOptimizerService) fallback(active []model.PackageCandidate, total decimal.Decimal) model.OptimizationResult {
	largest := active[0]
	for _, c := range active[1:] {
		if c.Size.GreaterThan(largest.Size) {
			largest = c
		}
	}
	count := total.Div(largest.Size).Ceil().IntPart()
	line := model.NewSelectionLine(largest, int(count))
	line.Overfill = line.SuppliedQuantity.Sub(total)

	return model.OptimizationResult{
		Selection: model.NewSelection([]model.SelectionLine{line}, total, model.Deterministic{}),
		Score:     model.InfiniteScore,
	}
}
