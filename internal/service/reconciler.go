package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/nosenfield/smart-scrip/internal/logger"
	"github.com/nosenfield/smart-scrip/internal/metrics"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Stage names a step of the reconciliation pipeline.
type Stage string

const (
	StageValidate            Stage = "validate"
	StageResolveDose         Stage = "resolve_dose"
	StageNormalizeIdentity   Stage = "normalize_identity"
	StageFetchCandidates     Stage = "fetch_candidates"
	StageDeterministicSelect Stage = "deterministic_select"
	StageAdvisoryOverride    Stage = "advisory_override"
	StageAssemble            Stage = "assemble"
)

// SelectionStrategy chooses the deterministic selection algorithm.
type SelectionStrategy string

const (
	// StrategyMatcher uses the ordered exact/cover/greedy matcher.
	StrategyMatcher SelectionStrategy = "matcher"
	// StrategyOptimizer uses the scored single/pair search.
	StrategyOptimizer SelectionStrategy = "optimizer"
)

// ParseSelectionStrategy parses a configured strategy name.
func ParseSelectionStrategy(s string) (SelectionStrategy, error) {
	switch SelectionStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyMatcher:
		return StrategyMatcher, nil
	case StrategyOptimizer:
		return StrategyOptimizer, nil
	default:
		return "", fmt.Errorf("unknown selection strategy %q", s)
	}
}

// DefaultAdvisoryTimeout bounds a single advisory call.
const DefaultAdvisoryTimeout = 20 * time.Second

// Advisory outcomes recorded in metrics.
const (
	advisoryAccepted = "accepted"
	advisoryRejected = "rejected"
	advisoryFailed   = "failed"
	advisoryTimeout  = "timeout"
)

// Reconciler turns a prescription into a dispensable package selection.
type Reconciler interface {
	Calculate(ctx context.Context, input model.CalculationInput) model.CalculationResult
}

// ReconcilerOption configures a ReconcilerService.
type ReconcilerOption func(*ReconcilerService)

// WithInputValidator replaces the default struct-tag validator.
func WithInputValidator(v InputValidator) ReconcilerOption {
	return func(s *ReconcilerService) {
		s.validator = v
	}
}

// WithDoseParser enables free-text dosing instructions.
func WithDoseParser(p DoseParser) ReconcilerOption {
	return func(s *ReconcilerService) {
		s.parser = p
	}
}

// WithIdentityDetailer enables supplementary identity lookups.
func WithIdentityDetailer(d IdentityDetailer) ReconcilerOption {
	return func(s *ReconcilerService) {
		s.detailer = d
	}
}

// WithAdvisor enables the advisory override step.
func WithAdvisor(a AdvisoryOverrideService) ReconcilerOption {
	return func(s *ReconcilerService) {
		s.advisor = a
	}
}

// WithAdvisoryTimeout bounds each advisory call.
func WithAdvisoryTimeout(d time.Duration) ReconcilerOption {
	return func(s *ReconcilerService) {
		if d > 0 {
			s.advisoryTimeout = d
		}
	}
}

// WithSelectionStrategy picks the deterministic selection algorithm.
func WithSelectionStrategy(strategy SelectionStrategy) ReconcilerOption {
	return func(s *ReconcilerService) {
		s.strategy = strategy
	}
}

// WithCriteria sets the optimizer criteria used by StrategyOptimizer.
func WithCriteria(c Criteria) ReconcilerOption {
	return func(s *ReconcilerService) {
		s.criteria = c
	}
}

// WithOptimizer replaces the default optimizer.
func WithOptimizer(o PackageOptimizer) ReconcilerOption {
	return func(s *ReconcilerService) {
		s.optimizer = o
	}
}

// ReconcilerService implements Reconciler as a staged pipeline. Only the
// stages that talk to collaborators can fail; selection itself is pure.
type ReconcilerService struct {
	normalizer IdentityNormalizer
	catalog    CandidateCatalog
	validator  InputValidator
	parser     DoseParser
	detailer   IdentityDetailer
	advisor    AdvisoryOverrideService

	resolver  QuantityResolver
	matcher   PackageMatcher
	optimizer PackageOptimizer
	strategy  SelectionStrategy
	criteria  Criteria

	advisoryTimeout time.Duration
	schema          *validator.Validate
	tracer          trace.Tracer
}

// NewReconcilerService creates a reconciler over the given catalog collaborators.
func NewReconcilerService(normalizer IdentityNormalizer, catalog CandidateCatalog, opts ...ReconcilerOption) *ReconcilerService {
	s := &ReconcilerService{
		normalizer:      normalizer,
		catalog:         catalog,
		validator:       NewStructValidator(),
		resolver:        NewQuantityResolverService(),
		matcher:         NewPackageMatcherService(),
		optimizer:       NewPackageOptimizerService(),
		strategy:        StrategyMatcher,
		criteria:        DefaultCriteria(),
		advisoryTimeout: DefaultAdvisoryTimeout,
		schema:          newTagValidator(),
		tracer:          otel.Tracer("github.com/nosenfield/smart-scrip/internal/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// pipeline carries the state of one reconciliation between stages.
type pipeline struct {
	input       model.CalculationInput
	stage       Stage
	requirement model.QuantityRequirement
	identity    model.DrugIdentity
	candidates  []model.PackageCandidate
	selection   model.Selection
	warnings    []model.Warning
	result      model.CalculationResult
}

type stageFunc func(ctx context.Context, p *pipeline) error

// Calculate runs the pipeline. It never returns an error: failures are
// reported through the result's ErrorCategory, ErrorCode and Message.
func (s *ReconcilerService) Calculate(ctx context.Context, input model.CalculationInput) (result model.CalculationResult) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "reconcile",
		trace.WithAttributes(attribute.String("strategy", string(s.strategy))))
	defer span.End()

	p := &pipeline{input: input, warnings: []model.Warning{}}

	defer func() {
		status := "success"
		if !result.Success {
			status = "failure"
			span.SetStatus(codes.Error, result.ErrorCode)
		}
		span.SetAttributes(attribute.String("outcome", status))
		metrics.RecordReconciliation(time.Since(start), status, string(result.ErrorCategory))
	}()

	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error().
				Interface("panic", r).
				Str("stage", string(p.stage)).
				Bytes("stack", debug.Stack()).
				Msg("Panic recovered during reconciliation")
			result = s.fail(ctx, newReconcileError(p.stage, model.CategoryInternal, CodeInternal,
				fmt.Errorf("panic: %v", r)), p.warnings)
		}
	}()

	steps := []struct {
		stage Stage
		fn    stageFunc
	}{
		{StageValidate, s.validate},
		{StageResolveDose, s.resolveDose},
		{StageNormalizeIdentity, s.normalizeIdentity},
		{StageFetchCandidates, s.fetchCandidates},
		{StageDeterministicSelect, s.deterministicSelect},
		{StageAdvisoryOverride, s.advisoryOverride},
	}

	for _, step := range steps {
		p.stage = step.stage
		if err := ctx.Err(); err != nil {
			return s.fail(ctx, newReconcileError(step.stage, model.CategoryExternalService, CodeExternalService, err), p.warnings)
		}
		if err := s.runStage(ctx, step.stage, p, step.fn); err != nil {
			return s.fail(ctx, err, p.warnings)
		}
	}

	p.stage = StageAssemble
	_ = s.runStage(ctx, StageAssemble, p, s.assemble)
	return p.result
}

func (s *ReconcilerService) runStage(ctx context.Context, stage Stage, p *pipeline, fn stageFunc) error {
	ctx, span := s.tracer.Start(ctx, "reconcile."+string(stage))
	defer span.End()

	start := time.Now()
	err := fn(ctx, p)
	metrics.ObserveStage(string(stage), time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stage))
	}
	return err
}

func (s *ReconcilerService) validate(_ context.Context, p *pipeline) error {
	err := s.validator.Validate(p.input)
	if err == nil {
		return nil
	}

	re := newReconcileError(StageValidate, model.CategoryValidation, CodeValidationFailed, err)
	var fields FieldErrors
	if errors.As(err, &fields) {
		re.Details = fields
	}
	return re
}

func (s *ReconcilerService) resolveDose(ctx context.Context, p *pipeline) error {
	dose := p.input.Dose
	if dose == nil {
		if s.parser == nil {
			return newReconcileError(StageResolveDose, model.CategoryValidation, CodeStructuredDoseRequired,
				errors.New("free-text dosing instructions without a dose parser"))
		}
		parsed, err := s.parser.Parse(ctx, strings.TrimSpace(p.input.DosingInstructions))
		if err != nil {
			return newReconcileError(StageResolveDose, model.CategoryExternalService, CodeExternalService, err)
		}
		dose = &parsed
	}

	days := p.input.DaysSupply
	if days == 0 {
		if dose.ExplicitDurationDays == nil {
			re := newReconcileError(StageResolveDose, model.CategoryValidation, CodeDaysSupplyRequired,
				errors.New("no days supply and no explicit duration"))
			re.Details = map[string]string{"days_supply": "is required when the dosing instructions state no duration"}
			return re
		}
		days = *dose.ExplicitDurationDays
		if days < MinDaysSupply || days > MaxDaysSupply {
			re := newReconcileError(StageResolveDose, model.CategoryValidation, CodeDurationOutOfRange,
				fmt.Errorf("explicit duration of %d days", days))
			re.Details = map[string]string{"dose.explicit_duration_days": fmt.Sprintf("must be between %d and %d", MinDaysSupply, MaxDaysSupply)}
			return re
		}
	}

	req := s.resolver.Resolve(*dose, days)
	if req.IsZero() {
		p.requirement = req
		return nil
	}

	rounded := RoundForDispensing(req.TotalQuantity, req.Unit)
	if !rounded.Equal(req.TotalQuantity) {
		p.warnings = append(p.warnings, model.NewWarning(model.WarnQuantityRounded, model.SeverityInfo,
			fmt.Sprintf("Quantity %s %s was rounded to %s for dispensing", req.TotalQuantity.String(), req.Unit, rounded.String())))
		req = req.WithTotal(rounded)
	}
	p.requirement = req
	return nil
}

func (s *ReconcilerService) normalizeIdentity(ctx context.Context, p *pipeline) error {
	if id := strings.TrimSpace(p.input.PackageID); id != "" {
		pkg, err := s.normalizer.ValidateKnownPackage(ctx, id)
		if err != nil {
			return newReconcileError(StageNormalizeIdentity, model.CategoryExternalService, CodeExternalService, err)
		}
		if pkg == nil || pkg.CanonicalID == "" {
			return newReconcileError(StageNormalizeIdentity, model.CategoryValidation, CodeInvalidPackage,
				fmt.Errorf("package %q not found", id))
		}
		if !pkg.IsActive() {
			return newReconcileError(StageNormalizeIdentity, model.CategoryValidation, CodeInvalidPackage,
				fmt.Errorf("package %q is inactive", id))
		}
		p.identity = model.DrugIdentity{CanonicalID: pkg.CanonicalID}
		return nil
	}

	identity, err := s.normalizer.Normalize(ctx, strings.TrimSpace(p.input.DrugName))
	if err != nil {
		return newReconcileError(StageNormalizeIdentity, model.CategoryExternalService, CodeExternalService, err)
	}
	if identity == nil || identity.CanonicalID == "" {
		return newReconcileError(StageNormalizeIdentity, model.CategoryBusinessRule, CodeDrugNotFound,
			fmt.Errorf("no canonical identity for %q", p.input.DrugName))
	}
	p.identity = *identity
	return nil
}

func (s *ReconcilerService) fetchCandidates(ctx context.Context, p *pipeline) error {
	canonicalID := p.identity.CanonicalID
	g, gctx := errgroup.WithContext(ctx)

	var candidates []model.PackageCandidate
	g.Go(func() error {
		var err error
		candidates, err = s.catalog.FetchCandidates(gctx, canonicalID)
		return err
	})

	var details *model.IdentityDetails
	if s.detailer != nil {
		g.Go(func() error {
			d, err := s.detailer.Details(gctx, canonicalID)
			if err != nil {
				logger.FromContext(ctx).Warn().
					Err(err).
					Str("canonical_id", canonicalID).
					Msg("Identity details unavailable")
				return nil
			}
			details = &d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return newReconcileError(StageFetchCandidates, model.CategoryExternalService, CodeExternalService, err)
	}

	if details != nil {
		p.identity = mergeDetails(p.identity, *details)
	}

	if len(candidates) == 0 {
		return newReconcileError(StageFetchCandidates, model.CategoryBusinessRule, CodeNoCandidates,
			fmt.Errorf("catalog has no packages for %s", canonicalID))
	}
	p.candidates = candidates
	return nil
}

func mergeDetails(id model.DrugIdentity, d model.IdentityDetails) model.DrugIdentity {
	if id.DisplayName == "" {
		id.DisplayName = d.DisplayName
	}
	if id.DosageForm == "" {
		id.DosageForm = d.DosageForm
	}
	if id.Strength == "" {
		id.Strength = d.Strength
	}
	return id
}

func (s *ReconcilerService) deterministicSelect(_ context.Context, p *pipeline) error {
	if p.requirement.IsZero() {
		p.selection = model.EmptySelection()
		return nil
	}

	var (
		sel      model.Selection
		warnings []model.Warning
	)

	switch s.strategy {
	case StrategyOptimizer:
		sel, warnings = s.optimize(p.requirement, p.candidates)
	default:
		m := s.matcher.Match(p.requirement, p.candidates)
		sel, warnings = m.Selection, m.Warnings
	}
	p.warnings = append(p.warnings, warnings...)

	if sel.IsEmpty() {
		return newReconcileError(StageDeterministicSelect, model.CategoryBusinessRule, CodeNoActivePackages,
			errors.New("no dispensable package among candidates"))
	}
	p.selection = sel
	return nil
}

// optimize runs the optimizer over the unit-compatible active candidates and
// derives the warnings the matcher would raise for the same outcome.
func (s *ReconcilerService) optimize(req model.QuantityRequirement, candidates []model.PackageCandidate) (model.Selection, []model.Warning) {
	active := model.ActiveCandidates(candidates)
	if len(active) == 0 {
		return model.EmptySelection(), []model.Warning{model.NewWarning(model.WarnInactiveOnly, model.SeverityError,
			"All available packages for this medication are inactive")}
	}

	warnings := make([]model.Warning, 0, 3)
	pool := filterByUnit(active, req.Unit)
	if len(pool) == 0 {
		warnings = append(warnings, model.NewWarning(model.WarnNoUnitMatch, model.SeverityWarning,
			fmt.Sprintf("No active package is sold in %q; package units are used as-is", req.Unit)))
		pool = active
	}

	res := s.optimizer.Optimize(req, pool, s.criteria)
	sel := res.Selection
	if sel.IsEmpty() {
		return sel, warnings
	}

	if res.Degraded() {
		warnings = append(warnings, model.NewWarning(model.WarnOverfillToleranceExceeded, model.SeverityWarning,
			fmt.Sprintf("No combination stays within %s%% overfill; the largest package was used", decimal.NewFromFloat(s.criteria.MaxOverfillPercent).String())))
	}
	if sel.PackageCount > 1 {
		warnings = append(warnings, model.NewWarning(model.WarnMultiplePackages, model.SeverityInfo,
			fmt.Sprintf("%d packages are required to fill this prescription", sel.PackageCount)))
	}
	if sel.TotalWaste.IsPositive() {
		warnings = append(warnings, overfillWarning(sel.TotalWaste, req.TotalQuantity, req.Unit))
	}
	return sel, warnings
}

func (s *ReconcilerService) advisoryOverride(ctx context.Context, p *pipeline) error {
	if s.advisor == nil || p.requirement.IsZero() {
		return nil
	}
	log := logger.FromContext(ctx)

	actx, cancel := context.WithTimeout(ctx, s.advisoryTimeout)
	defer cancel()

	override, err := s.safeAdvise(actx, p.requirement, p.candidates)
	if err != nil {
		outcome := advisoryFailed
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(actx.Err(), context.DeadlineExceeded) {
			outcome = advisoryTimeout
		}
		metrics.RecordAdvisoryOutcome(outcome)
		log.Warn().Err(err).Str("outcome", outcome).Msg("Advisory override unavailable, keeping deterministic selection")
		return nil
	}

	sel, err := s.acceptOverride(override, p.requirement, p.candidates)
	if err != nil {
		metrics.RecordAdvisoryOutcome(advisoryRejected)
		log.Warn().Err(err).Msg("Advisory override rejected, keeping deterministic selection")
		return nil
	}

	metrics.RecordAdvisoryOutcome(advisoryAccepted)
	p.selection = sel
	p.warnings = append(p.warnings, override.AdvisoryWarnings...)
	return nil
}

// safeAdvise keeps a misbehaving advisor from escalating into a pipeline failure.
func (s *ReconcilerService) safeAdvise(ctx context.Context, req model.QuantityRequirement, candidates []model.PackageCandidate) (override *model.AdvisoryOverride, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("advisor panic: %v", r)
		}
	}()
	return s.advisor.Advise(ctx, req, candidates)
}

// acceptOverride turns an advisory proposal into a Selection. Every line must
// name an active, unit-compatible candidate and the lines together must cover
// the requirement.
func (s *ReconcilerService) acceptOverride(o *model.AdvisoryOverride, req model.QuantityRequirement, candidates []model.PackageCandidate) (model.Selection, error) {
	if o == nil {
		return model.Selection{}, errors.New("empty advisory response")
	}
	if err := s.schema.Struct(o); err != nil {
		return model.Selection{}, fmt.Errorf("advisory schema: %w", err)
	}

	active := model.ActiveCandidates(candidates)
	pool := filterByUnit(active, req.Unit)
	if len(pool) == 0 {
		pool = active
	}
	allowed := make(map[string]model.PackageCandidate, len(pool))
	for _, c := range pool {
		if _, dup := allowed[c.ID]; !dup {
			allowed[c.ID] = c
		}
	}

	lines := make([]model.SelectionLine, 0, len(o.Lines))
	index := make(map[string]int, len(o.Lines))
	for _, l := range o.Lines {
		c, ok := allowed[l.PackageID]
		if !ok {
			return model.Selection{}, fmt.Errorf("advisory line references unavailable package %q", l.PackageID)
		}
		if i, dup := index[l.PackageID]; dup {
			lines[i] = model.NewSelectionLine(c, lines[i].PackageCount+l.PackageCount)
			continue
		}
		index[l.PackageID] = len(lines)
		lines = append(lines, model.NewSelectionLine(c, l.PackageCount))
	}

	sel := model.NewSelection(lines, req.TotalQuantity, model.AdvisoryOverridden{Rationale: strings.TrimSpace(o.Rationale)})
	if sel.TotalSupplied.LessThan(req.TotalQuantity) {
		return model.Selection{}, fmt.Errorf("advisory selection supplies %s of required %s",
			sel.TotalSupplied.String(), req.TotalQuantity.String())
	}
	sel.Lines[len(sel.Lines)-1].Overfill = sel.TotalWaste
	return sel, nil
}

func (s *ReconcilerService) assemble(_ context.Context, p *pipeline) error {
	req := p.requirement
	sel := p.selection
	p.result = model.CalculationResult{
		Success:     true,
		Requirement: &req,
		Selection:   &sel,
		Warnings:    p.warnings,
		Rationale:   sel.Rationale(),
	}
	if p.identity.CanonicalID != "" {
		identity := p.identity
		p.result.Identity = &identity
	}
	return nil
}

func (s *ReconcilerService) fail(ctx context.Context, err error, warnings []model.Warning) model.CalculationResult {
	var re *ReconcileError
	if !errors.As(err, &re) {
		re = newReconcileError("", model.CategoryInternal, CodeInternal, err)
	}

	event := logger.FromContext(ctx).Info()
	switch re.Category {
	case model.CategoryExternalService:
		event = logger.FromContext(ctx).Warn()
	case model.CategoryInternal:
		event = logger.FromContext(ctx).Error()
	}
	event.
		Err(re.Err).
		Str("stage", string(re.Stage)).
		Str("category", string(re.Category)).
		Str("code", re.Code).
		Msg("Reconciliation failed")

	if warnings == nil {
		warnings = []model.Warning{}
	}
	return model.CalculationResult{
		Success:       false,
		Warnings:      warnings,
		ErrorCode:     re.Code,
		ErrorCategory: re.Category,
		Message:       MessageFor(re.Code),
		Details:       re.Details,
	}
}
