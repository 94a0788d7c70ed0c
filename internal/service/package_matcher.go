package service

import (
	"fmt"
	"sort"

	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/shopspring/decimal"
)

// MatchResult is the matcher's selection together with the warnings it raised.
type MatchResult struct {
	Selection model.Selection
	Warnings  []model.Warning
}

// PackageMatcher selects packages for a requirement deterministically.
type PackageMatcher interface {
	Match(req model.QuantityRequirement, candidates []model.PackageCandidate) MatchResult
}

// PackageMatcherService implements PackageMatcher as an ordered decision procedure:
// exact size, then smallest single package that covers the requirement, then a
// greedy multi-package fill.
type PackageMatcherService struct{}

// NewPackageMatcherService creates a new PackageMatcherService.
func NewPackageMatcherService() *PackageMatcherService {
	return &PackageMatcherService{}
}

// Match selects packages for req from candidates.
func (s *PackageMatcherService) Match(req model.QuantityRequirement, candidates []model.PackageCandidate) MatchResult {
	if req.IsZero() {
		return MatchResult{Selection: model.EmptySelection(), Warnings: []model.Warning{}}
	}

	if len(candidates) == 0 {
		return failedMatch(model.NewWarning(model.WarnNoMatch, model.SeverityError,
			"No package candidates were found for this medication"))
	}

	active := model.ActiveCandidates(candidates)
	if len(active) == 0 {
		return failedMatch(model.NewWarning(model.WarnInactiveOnly, model.SeverityError,
			"All available packages for this medication are inactive"))
	}

	warnings := make([]model.Warning, 0, 2)

	pool := filterByUnit(active, req.Unit)
	if len(pool) == 0 {
		warnings = append(warnings, model.NewWarning(model.WarnNoUnitMatch, model.SeverityWarning,
			fmt.Sprintf("No active package is sold in %q; package units are used as-is", req.Unit)))
		pool = active
	}

	total := req.TotalQuantity

	for _, c := range pool {
		if c.Size.Equal(total) {
			line := model.NewSelectionLine(c, 1)
			return MatchResult{
				Selection: model.NewSelection([]model.SelectionLine{line}, total, model.Deterministic{}),
				Warnings:  warnings,
			}
		}
	}

	if best, ok := smallestCovering(pool, total); ok {
		line := model.NewSelectionLine(best, 1)
		line.Overfill = best.Size.Sub(total)
		if line.Overfill.IsPositive() {
			warnings = append(warnings, overfillWarning(line.Overfill, total, req.Unit))
		}
		return MatchResult{
			Selection: model.NewSelection([]model.SelectionLine{line}, total, model.Deterministic{}),
			Warnings:  warnings,
		}
	}

	sel := greedyFill(pool, total)
	if sel.PackageCount > 1 {
		warnings = append(warnings, model.NewWarning(model.WarnMultiplePackages, model.SeverityInfo,
			fmt.Sprintf("%d packages are required to fill this prescription", sel.PackageCount)))
	}
	if sel.TotalWaste.IsPositive() {
		warnings = append(warnings, overfillWarning(sel.TotalWaste, total, req.Unit))
	}
	return MatchResult{Selection: sel, Warnings: warnings}
}

func failedMatch(w model.Warning) MatchResult {
	return MatchResult{Selection: model.EmptySelection(), Warnings: []model.Warning{w}}
}

func filterByUnit(candidates []model.PackageCandidate, unit string) []model.PackageCandidate {
	out := make([]model.PackageCandidate, 0, len(candidates))
	for _, c := range candidates {
		if sameUnit(c.Unit, unit) {
			out = append(out, c)
		}
	}
	return out
}

// smallestCovering returns the smallest candidate whose size covers total.
// Equal sizes keep the first one encountered.
func smallestCovering(candidates []model.PackageCandidate, total decimal.Decimal) (model.PackageCandidate, bool) {
	var best model.PackageCandidate
	found := false
	for _, c := range candidates {
		if c.Size.LessThan(total) {
			continue
		}
		if !found || c.Size.LessThan(best.Size) {
			best = c
			found = true
		}
	}
	return best, found
}

// greedyFill takes as many of the largest packages as fit, then the next size down,
// and tops up with one more of the smallest package if a remainder is left.
func greedyFill(candidates []model.PackageCandidate, total decimal.Decimal) model.Selection {
	sorted := make([]model.PackageCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Size.GreaterThan(sorted[j].Size)
	})

	lines := make([]model.SelectionLine, 0, len(sorted))
	index := make(map[string]int, len(sorted))
	remaining := total

	for _, c := range sorted {
		count := remaining.Div(c.Size).Floor().IntPart()
		if count <= 0 {
			continue
		}
		index[c.ID] = len(lines)
		lines = append(lines, model.NewSelectionLine(c, int(count)))
		remaining = remaining.Sub(c.Size.Mul(decimal.NewFromInt(count)))
	}

	if remaining.IsPositive() {
		smallest := firstOfSize(sorted, sorted[len(sorted)-1].Size)
		overfill := smallest.Size.Sub(remaining)
		if i, ok := index[smallest.ID]; ok {
			line := lines[i]
			lines[i] = model.NewSelectionLine(smallest, line.PackageCount+1)
			lines[i].Overfill = overfill
		} else {
			line := model.NewSelectionLine(smallest, 1)
			line.Overfill = overfill
			lines = append(lines, line)
		}
	}

	return model.NewSelection(lines, total, model.Deterministic{})
}

func firstOfSize(candidates []model.PackageCandidate, size decimal.Decimal) model.PackageCandidate {
	for _, c := range candidates {
		if c.Size.Equal(size) {
			return c
		}
	}
	return candidates[len(candidates)-1]
}

func overfillWarning(overfill, total decimal.Decimal, unit string) model.Warning {
	pct := overfill.Div(total).Mul(decimal.NewFromInt(100)).Round(1)
	return model.NewWarning(model.WarnOverfill, model.SeverityWarning,
		fmt.Sprintf("Selected packages exceed the required quantity by %s %s (%s%%)", overfill.String(), unit, pct.String()))
}
