package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// SelectionLine is one package choice and how many of it to dispense.
type SelectionLine struct {
	PackageID        string          `json:"package_id"`
	UnitsPerPackage  decimal.Decimal `json:"units_per_package"`
	Unit             string          `json:"unit"`
	PackageCount     int             `json:"package_count"`
	SuppliedQuantity decimal.Decimal `json:"supplied_quantity"`
	Overfill         decimal.Decimal `json:"overfill"`
}

// NewSelectionLine builds a line for count packages of the candidate.
func NewSelectionLine(c PackageCandidate, count int) SelectionLine {
	return SelectionLine{
		PackageID:        c.ID,
		UnitsPerPackage:  c.Size,
		Unit:             c.Unit,
		PackageCount:     count,
		SuppliedQuantity: c.Size.Mul(decimal.NewFromInt(int64(count))),
		Overfill:         decimal.Zero,
	}
}

// ProvenanceKind names where a Selection came from.
type ProvenanceKind string

const (
	ProvenanceDeterministic ProvenanceKind = "deterministic"
	ProvenanceAdvisory      ProvenanceKind = "advisory"
)

// Provenance is a closed set: Deterministic or AdvisoryOverridden.
type Provenance interface {
	Kind() ProvenanceKind
	provenance()
}

// Deterministic marks a selection produced by the matcher or optimizer.
type Deterministic struct{}

func (Deterministic) Kind() ProvenanceKind { return ProvenanceDeterministic }
func (Deterministic) provenance()          {}

// AdvisoryOverridden marks a selection replaced by the advisory service.
type AdvisoryOverridden struct {
	Rationale string
}

func (AdvisoryOverridden) Kind() ProvenanceKind { return ProvenanceAdvisory }
func (AdvisoryOverridden) provenance()          {}

// Selection is a set of lines that together meet a QuantityRequirement.
type Selection struct {
	Lines         []SelectionLine
	TotalSupplied decimal.Decimal
	TotalWaste    decimal.Decimal
	PackageCount  int
	Provenance    Provenance
}

// NewSelection totals the lines against the required quantity.
// Waste never goes negative: an empty selection has zero waste.
func NewSelection(lines []SelectionLine, required decimal.Decimal, prov Provenance) Selection {
	if lines == nil {
		lines = []SelectionLine{}
	}
	if prov == nil {
		prov = Deterministic{}
	}
	s := Selection{Lines: lines, TotalSupplied: decimal.Zero, TotalWaste: decimal.Zero, Provenance: prov}
	for _, l := range lines {
		s.TotalSupplied = s.TotalSupplied.Add(l.SuppliedQuantity)
		s.PackageCount += l.PackageCount
	}
	if len(lines) > 0 {
		s.TotalWaste = decimal.Max(s.TotalSupplied.Sub(required), decimal.Zero)
	}
	return s
}

// EmptySelection returns a deterministic selection with no lines.
func EmptySelection() Selection {
	return NewSelection(nil, decimal.Zero, Deterministic{})
}

// IsEmpty reports whether the selection dispenses nothing.
func (s Selection) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Rationale returns the advisory rationale, or "" for deterministic selections.
func (s Selection) Rationale() string {
	if a, ok := s.Provenance.(AdvisoryOverridden); ok {
		return a.Rationale
	}
	return ""
}

// InfiniteScore marks a structurally valid result that exceeded the overfill tolerance.
var InfiniteScore = math.Inf(1)

// OptimizationResult is the optimizer's chosen selection and its score (lower is better).
type OptimizationResult struct {
	Selection Selection
	Score     float64
}

// Degraded reports whether the result is a best-effort fallback.
func (r OptimizationResult) Degraded() bool {
	return math.IsInf(r.Score, 1)
}

// AdvisoryLine is a line proposed by the advisory service before acceptance.
type AdvisoryLine struct {
	PackageID    string  `json:"package_id" validate:"required"`
	PackageCount int     `json:"package_count" validate:"gte=1,lte=1000"`
	Overfill     float64 `json:"overfill,omitempty" validate:"gte=0"`
}

// AdvisoryOverride is the advisory service's proposal.
type AdvisoryOverride struct {
	Lines            []AdvisoryLine `json:"lines" validate:"required,min=1,dive"`
	Rationale        string         `json:"rationale" validate:"required,max=2000"`
	AdvisoryWarnings []Warning      `json:"warnings" validate:"dive"`
}
