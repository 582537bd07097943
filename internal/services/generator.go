package services

import (
	"context"
	"fmt"

	"daytrip-itinerary-service/internal/domain"
	"daytrip-itinerary-service/internal/platform/obs"
	"daytrip-itinerary-service/internal/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Stage identifies the pipeline step in which a generation error occurred.
// Lower-level errors are wrapped with their stage to aid diagnosis.
type Stage string

const (
	StageCollecting Stage = "collecting"
	StageSequencing Stage = "sequencing"
	StageEstimating Stage = "estimating"
	StageValidating Stage = "validating"
)

const defaultMaxInFlight = 6

// Generator orchestrates the itinerary pipeline:
// Collecting -> Sequencing -> Estimating -> Validating -> Done.
//
// Estimating is all-or-nothing: if any leg lookup fails, no partial itinerary
// is returned. Generation for a single plan is serialized through a per-plan
// lease; a request arriving while the lease is held fails fast with
// domain.ErrGenerationInProgress.
type Generator struct {
	repo        ports.PlanRepository
	provider    ports.DistanceProvider
	locks       *PlanLocks
	maxInFlight int
}

// NewGenerator wires a Generator. maxInFlight caps concurrent distance
// lookups (external rate limits); values <= 0 select the default of 6.
func NewGenerator(repo ports.PlanRepository, provider ports.DistanceProvider, maxInFlight int) *Generator {
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	return &Generator{
		repo:        repo,
		provider:    provider,
		locks:       NewPlanLocks(),
		maxInFlight: maxInFlight,
	}
}

// Generate runs the full pipeline for a stored plan. The result is not
// persisted; Accept commits the ordering and legs.
func (g *Generator) Generate(ctx context.Context, planID uuid.UUID, optimize bool) (_ *domain.GeneratedItinerary, err error) {
	defer obs.Time(ctx, "generator.Generate")(&err)

	if !g.locks.TryAcquire(planID) {
		return nil, fmt.Errorf("generate plan %s: %w", planID, domain.ErrGenerationInProgress)
	}
	defer g.locks.Release(planID)

	return g.run(ctx, planID, optimize)
}

// Accept runs the pipeline and atomically persists the resulting stop order
// and legs, replacing the plan's previous legs. The lease is held from
// sequencing through the store write so two accepts cannot race.
func (g *Generator) Accept(ctx context.Context, planID uuid.UUID, optimize bool) (_ *domain.GeneratedItinerary, err error) {
	defer obs.Time(ctx, "generator.Accept")(&err)

	if !g.locks.TryAcquire(planID) {
		return nil, fmt.Errorf("accept plan %s: %w", planID, domain.ErrGenerationInProgress)
	}
	defer g.locks.Release(planID)

	it, err := g.run(ctx, planID, optimize)
	if err != nil {
		return nil, err
	}

	order := make([]uuid.UUID, len(it.Stops))
	for i, s := range it.Stops {
		order[i] = s.ID
	}
	if err := g.repo.ReplaceLegs(ctx, planID, order, it.Legs); err != nil {
		return nil, fmt.Errorf("accept plan %s: replace legs: %w", planID, err)
	}
	return it, nil
}

// Reorder applies a caller-supplied stop ordering and re-derives the plan's
// legs before persisting, so stored legs always match the stored order.
// stopIDs must be a permutation of the plan's current stop ids.
func (g *Generator) Reorder(ctx context.Context, planID uuid.UUID, stopIDs []uuid.UUID) (_ []domain.Stop, _ []domain.Leg, err error) {
	defer obs.Time(ctx, "generator.Reorder")(&err)

	if !g.locks.TryAcquire(planID) {
		return nil, nil, fmt.Errorf("reorder plan %s: %w", planID, domain.ErrGenerationInProgress)
	}
	defer g.locks.Release(planID)

	plan, err := g.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, nil, fmt.Errorf("reorder plan %s: %w", planID, err)
	}

	byID := make(map[uuid.UUID]domain.Stop, len(plan.Stops))
	for _, s := range plan.Stops {
		byID[s.ID] = s
	}
	if len(stopIDs) != len(plan.Stops) {
		return nil, nil, fmt.Errorf("reorder plan %s: %w: got %d stop ids, plan has %d stops",
			planID, domain.ErrValidation, len(stopIDs), len(plan.Stops))
	}

	ordered := make([]domain.Stop, 0, len(stopIDs))
	for i, id := range stopIDs {
		s, ok := byID[id]
		if !ok {
			return nil, nil, fmt.Errorf("reorder plan %s: %w: stop %s not in plan (or repeated)",
				planID, domain.ErrValidation, id)
		}
		delete(byID, id)
		s.Sequence = i
		ordered = append(ordered, s)
	}

	legs, _, _, err := g.estimateLegs(ctx, ordered, plan.DefaultTransport)
	if err != nil {
		return nil, nil, fmt.Errorf("reorder plan %s: %s: %w", planID, StageEstimating, err)
	}

	if err := g.repo.ReplaceLegs(ctx, planID, stopIDs, legs); err != nil {
		return nil, nil, fmt.Errorf("reorder plan %s: replace legs: %w", planID, err)
	}
	return ordered, legs, nil
}

// PreviewLeg is a computed leg in a preview result, addressed by the
// caller's input indexes rather than stored stop ids.
type PreviewLeg struct {
	FromIndex       int
	ToIndex         int
	DistanceMeters  int
	DurationSeconds int
	Polyline        string
}

// PreviewResult is the outcome of a preview-only route computation.
// Order maps result positions to input indexes and is set only when
// optimization was requested.
type PreviewResult struct {
	Legs                 []PreviewLeg
	Order                []int
	TotalDistanceMeters  int
	TotalDurationSeconds int
}

// Preview computes legs and totals for an ad-hoc location list without
// touching persisted stops or legs.
func (g *Generator) Preview(ctx context.Context, locations []domain.Location, mode domain.TransportMode, optimize bool) (_ *PreviewResult, err error) {
	defer obs.Time(ctx, "generator.Preview")(&err)

	stops := make([]domain.Stop, len(locations))
	for i, loc := range locations {
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("preview: stop %d: %w", i, err)
		}
		stops[i] = domain.Stop{
			ID:       uuid.New(),
			Sequence: i,
			Location: loc,
			StopType: domain.StopTypeWaypoint,
			Source:   domain.StopSourceManual,
		}
	}

	inputIndex := make(map[uuid.UUID]int, len(stops))
	for i, s := range stops {
		inputIndex[s.ID] = i
	}

	it, err := g.build(ctx, stops, mode, optimize)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}

	order := make([]int, len(it.Stops))
	for i, s := range it.Stops {
		order[i] = inputIndex[s.ID]
	}

	legs := make([]PreviewLeg, len(it.Legs))
	for i, l := range it.Legs {
		legs[i] = PreviewLeg{
			FromIndex:       order[i],
			ToIndex:         order[i+1],
			DistanceMeters:  l.DistanceMeters,
			DurationSeconds: l.DurationSeconds,
			Polyline:        l.Polyline,
		}
	}

	res := &PreviewResult{
		Legs:                 legs,
		TotalDistanceMeters:  it.TotalDistanceMeters,
		TotalDurationSeconds: it.TotalDurationSeconds,
	}
	if optimize {
		res.Order = order
	}
	return res, nil
}

// run executes Collecting through Validating for a stored plan.
func (g *Generator) run(ctx context.Context, planID uuid.UUID, optimize bool) (*domain.GeneratedItinerary, error) {
	plan, err := g.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, stageErr(planID, StageCollecting, err)
	}

	it, err := g.build(ctx, plan.Stops, plan.DefaultTransport, optimize)
	if err != nil {
		return nil, fmt.Errorf("generate plan %s: %w", planID, err)
	}
	return it, nil
}

// build is the storage-independent pipeline shared by Generate, Accept,
// and Preview.
func (g *Generator) build(ctx context.Context, stops []domain.Stop, mode domain.TransportMode, optimize bool) (*domain.GeneratedItinerary, error) {
	// Sequencing. The duration matrix feeds the optimizer; when ordering is
	// not optimized no external lookups happen here.
	var durations [][]int
	if optimize && len(stops) > 1 {
		var err error
		durations, err = buildDurationMatrix(ctx, g.provider, stops, mode, g.maxInFlight)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StageSequencing, err)
		}
	}
	ordered, err := SequenceStops(stops, optimize && durations != nil, durations)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageSequencing, err)
	}

	// Estimating, all-or-nothing.
	legs, totalDist, totalDur, err := g.estimateLegs(ctx, ordered, mode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageEstimating, err)
	}

	// Validating never fails; conflicts are advisory data.
	conflicts := DetectConflicts(ordered, legs)

	return &domain.GeneratedItinerary{
		Stops:                ordered,
		Legs:                 legs,
		TotalDistanceMeters:  totalDist,
		TotalDurationSeconds: totalDur,
		Conflicts:            conflicts,
	}, nil
}

// estimateLegs fetches travel metrics for each consecutive pair with bounded
// fan-out. Lookups are independent, so order of completion does not matter;
// the first failure cancels the remaining lookups and fails the whole batch.
func (g *Generator) estimateLegs(ctx context.Context, stops []domain.Stop, mode domain.TransportMode) ([]domain.Leg, int, int, error) {
	if len(stops) < 2 {
		return []domain.Leg{}, 0, 0, nil
	}

	results := make([]ports.RouteResult, len(stops)-1)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.maxInFlight)
	for i := 0; i+1 < len(stops); i++ {
		i := i
		eg.Go(func() error {
			r, err := g.provider.Route(ctx, stops[i].Location, stops[i+1].Location, mode)
			if err != nil {
				return fmt.Errorf("leg %d (%s -> %s): %w", i, stops[i].ID, stops[i+1].ID, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, 0, 0, err
	}

	legs := make([]domain.Leg, len(results))
	totalDist, totalDur := 0, 0
	for i, r := range results {
		legs[i] = domain.Leg{
			ID:              uuid.New(),
			PlanID:          stops[i].PlanID,
			FromStopID:      stops[i].ID,
			ToStopID:        stops[i+1].ID,
			Sequence:        i,
			TransportMode:   mode,
			DistanceMeters:  r.DistanceMeters,
			DurationSeconds: r.DurationSeconds,
			Polyline:        r.Polyline,
		}
		totalDist += r.DistanceMeters
		totalDur += r.DurationSeconds
	}
	return legs, totalDist, totalDur, nil
}

func stageErr(planID uuid.UUID, stage Stage, err error) error {
	return fmt.Errorf("generate plan %s: %s: %w", planID, stage, err)
}
