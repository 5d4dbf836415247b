package allocation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"fieldserve/models"
	"fieldserve/utils"

	"go.uber.org/zap"
)

// PresentOptions tunes a presentation request.
type PresentOptions struct {
	MaxSlots int
}

// flexPromptThresholdPercent is the minimum saving an alternative date must
// offer before the flexibility prompt fires.
const flexPromptThresholdPercent = 10.0

// evaluatedSlot is one candidate with every per-candidate computation done.
type evaluatedSlot struct {
	slot     models.ScheduleSlot
	engineer models.EngineerWithProfile
	workload models.WorkloadBalance
	risk     models.CancellationRisk
	quote    models.PriceQuote
	score    models.AllocationScore
}

// PresentSlotsToCustomer orchestrates generation, scoring, pricing and risk
// across all viable candidates and builds the ranked, badged customer view.
// Ranking uses the customer-focused weight preset; operational allocation
// keeps the platform default.
func (s *DefaultAllocationService) PresentSlotsToCustomer(ctx context.Context, req models.BookingRequest, opts PresentOptions) (*models.SlotPresentation, error) {
	logger := s.logger()

	candidates, err := s.GetViableSlots(ctx, req, opts.MaxSlots)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &models.SlotPresentation{Slots: []models.PresentedSlot{}}, nil
	}

	shared, err := s.loadSharedContext(ctx, req, candidates)
	if err != nil {
		return nil, err
	}
	rankingWeights := models.CustomerFocusedWeights()

	// Candidates are independent; evaluate them concurrently. The candidate
	// cap bounds the fan-out.
	resultsCh := make(chan evaluatedSlot, len(candidates))
	var wg sync.WaitGroup
	now := time.Now()
	for _, cand := range candidates {
		engineer, ok := shared.engineers[cand.EngineerID]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(cand models.ScheduleSlot, engineer models.EngineerWithProfile) {
			defer wg.Done()
			resultsCh <- s.evaluateCandidate(cand, req, engineer, rankingWeights, shared, now)
		}(cand, engineer)
	}
	wg.Wait()
	close(resultsCh)

	var evaluated []evaluatedSlot
	for ev := range resultsCh {
		evaluated = append(evaluated, ev)
	}
	if len(evaluated) == 0 {
		return &models.SlotPresentation{Slots: []models.PresentedSlot{}}, nil
	}

	sort.Slice(evaluated, func(i, j int) bool {
		if evaluated[i].score.Composite == evaluated[j].score.Composite {
			return evaluated[i].slot.Date < evaluated[j].slot.Date
		}
		return evaluated[i].score.Composite > evaluated[j].score.Composite
	})

	presented := make([]models.PresentedSlot, len(evaluated))
	for i, ev := range evaluated {
		presented[i] = models.PresentedSlot{
			Slot:           ev.slot,
			EngineerName:   ev.engineer.Name,
			Score:          ev.score.Composite,
			Price:          ev.quote.FinalPrice,
			OriginalPrice:  ev.quote.BasePrice,
			DiscountAmount: ev.quote.TotalDiscount,
			Explanation:    explainSlot(ev.score),
		}
	}
	assignBadges(presented, evaluated)

	presentation := &models.SlotPresentation{
		Slots:             presented,
		Savings:           buildSavings(evaluated),
		FlexibilityPrompt: buildFlexWoo(req, evaluated),
	}
	logger.Debug("presentation built",
		zap.Int("candidates", len(candidates)),
		zap.Int("presented", len(presented)))
	return presentation, nil
}

// sharedContext holds the aggregates computed once per request and shared
// read-only across candidate evaluations.
type sharedContext struct {
	rules     models.PricingRules
	stats     models.CancellationStats
	customer  models.Customer
	site      models.Site
	siteStats models.SiteStats
	engineers map[string]models.EngineerWithProfile
	weekStats map[string]models.EngineerWeekStats // engineerID|weekStart
	cohortAvg map[string]float64                  // weekStart
	jobsOnDay map[string]int                      // engineerID|date
}

func (s *DefaultAllocationService) loadSharedContext(ctx context.Context, req models.BookingRequest, candidates []models.ScheduleSlot) (*sharedContext, error) {
	shared := &sharedContext{
		engineers: map[string]models.EngineerWithProfile{},
		weekStats: map[string]models.EngineerWeekStats{},
		cohortAvg: map[string]float64{},
		jobsOnDay: map[string]int{},
	}

	rules, err := s.ConfigSrc.PricingRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing rules: %w", err)
	}
	shared.rules = rules

	stats, err := s.Bookings.CancellationStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cancellation stats: %w", err)
	}
	shared.stats = *stats

	site, err := s.Catalog.GetSite(ctx, req.SiteID)
	if err != nil {
		return nil, NewDataMissingError(fmt.Sprintf("site %s: %v", req.SiteID, err))
	}
	shared.site = *site

	shared.customer = models.Customer{ID: req.CustomerID}
	if c, err := s.Catalog.GetCustomer(ctx, req.CustomerID); err == nil {
		shared.customer = *c
	}
	shared.siteStats = models.SiteStats{SiteID: req.SiteID}
	if st, err := s.Bookings.SiteStats(ctx, req.SiteID); err == nil {
		shared.siteStats = *st
	}

	for _, cand := range candidates {
		if _, ok := shared.engineers[cand.EngineerID]; !ok {
			eng, err := s.Engineers.GetByID(ctx, cand.EngineerID)
			if err != nil {
				// Data-missing: the candidate is skipped downstream.
				s.logger().Warn("engineer snapshot unavailable",
					zap.String("engineerId", cand.EngineerID), zap.Error(err))
				continue
			}
			shared.engineers[cand.EngineerID] = *eng
		}

		day, err := time.Parse(models.DateLayout, cand.Date)
		if err != nil {
			continue
		}
		weekStart, weekEnd := isoWeekBounds(day)
		weekKey := cand.EngineerID + "|" + weekStart
		if _, ok := shared.weekStats[weekKey]; !ok {
			week, err := s.Bookings.WeekStats(ctx, cand.EngineerID, weekStart, weekEnd)
			if err == nil {
				shared.weekStats[weekKey] = *week
			}
		}
		if _, ok := shared.cohortAvg[weekStart]; !ok {
			avg, err := s.Bookings.CohortAverage(ctx, weekStart, weekEnd)
			if err == nil {
				shared.cohortAvg[weekStart] = avg
			}
		}
		dayKey := cand.EngineerID + "|" + cand.Date
		if _, ok := shared.jobsOnDay[dayKey]; !ok {
			if count, err := s.Bookings.CountOnDay(ctx, cand.EngineerID, cand.Date); err == nil {
				shared.jobsOnDay[dayKey] = count
			}
		}
	}
	return shared, nil
}

// evaluateCandidate runs the pure per-candidate pipeline: workload, risk,
// price, then the composite score.
func (s *DefaultAllocationService) evaluateCandidate(cand models.ScheduleSlot, req models.BookingRequest, engineer models.EngineerWithProfile, weights models.ScoringWeights, shared *sharedContext, now time.Time) evaluatedSlot {
	day, _ := time.Parse(models.DateLayout, cand.Date)
	weekStart, _ := isoWeekBounds(day)

	workload := ComputeWorkloadBalance(
		cand.EngineerID, day,
		shared.weekStats[cand.EngineerID+"|"+weekStart],
		shared.cohortAvg[weekStart],
		shared.jobsOnDay[cand.EngineerID+"|"+cand.Date],
	)
	risk := PredictCancellationRisk(req, cand, RiskInputs{
		Stats:    shared.stats,
		Customer: shared.customer,
		Site:     shared.siteStats,
		Now:      now,
	})
	quote := CalculatePrice(PriceContext{
		Request:        req,
		Slot:           cand,
		Engineer:       engineer,
		Customer:       shared.customer,
		Service:        models.Service{},
		BasePrice:      cand.EstimatedPrice,
		NearbyJobCount: cand.NearbyJobCount,
		Now:            now,
	}, shared.rules)

	distance := -1.0
	if km, ok := utils.DistanceKm(engineer.BaseLocation, shared.site.Location); ok {
		distance = km
	}
	score := ScoreSlotAllocation(cand, req, engineer, weights, ScoringInputs{
		Workload:         workload,
		Risk:             risk,
		Quote:            quote,
		DistanceToSiteKm: distance,
		MinMarginPercent: shared.rules.MinimumMarginPercent,
		Now:              now,
	})

	return evaluatedSlot{
		slot:     cand,
		engineer: engineer,
		workload: workload,
		risk:     risk,
		quote:    quote,
		score:    score,
	}
}

// badgeRule is one entry in the badge assignment table: a predicate over the
// ranked candidates plus the badges whose presence on the same slot
// suppresses this one. Assignment is a single pass; there is no sequencing
// between rules beyond the explicit exclusions.
type badgeRule struct {
	badge      string
	applies    func(i int) bool
	excludedBy []string
}

func assignBadges(presented []models.PresentedSlot, evaluated []evaluatedSlot) {
	earliest := 0
	for i := range evaluated {
		if slotBefore(evaluated[i].slot, evaluated[earliest].slot) {
			earliest = i
		}
	}
	topRated, maxYears := -1, 0
	for i := range evaluated {
		if years := evaluated[i].engineer.Profile.YearsExperience; years > maxYears {
			topRated, maxYears = i, years
		}
	}
	eco := ecoCandidate(evaluated)

	rules := []badgeRule{
		{badge: models.BadgeBestValue, applies: func(i int) bool { return i == 0 }},
		{badge: models.BadgeFastest, applies: func(i int) bool { return i == earliest }, excludedBy: []string{models.BadgeBestValue}},
		{badge: models.BadgeTopRated, applies: func(i int) bool { return i == topRated && maxYears >= 5 }},
		{badge: models.BadgeClusterDiscount, applies: func(i int) bool { return evaluated[i].quote.EffectiveDiscountPercent >= 5 }},
		{badge: models.BadgeEcoFriendly, applies: func(i int) bool { return i == eco }, excludedBy: []string{models.BadgeBestValue}},
	}

	for i := range presented {
		assigned := map[string]bool{}
		for _, rule := range rules {
			if !rule.applies(i) {
				continue
			}
			excluded := false
			for _, other := range rule.excludedBy {
				if assigned[other] {
					excluded = true
					break
				}
			}
			if excluded {
				continue
			}
			assigned[rule.badge] = true
			presented[i].Badges = append(presented[i].Badges, rule.badge)
		}
	}
}

// ecoCandidate returns the index with the best travel-efficiency factor,
// provided it sits in the top decile of that factor across candidates.
func ecoCandidate(evaluated []evaluatedSlot) int {
	scores := make([]float64, len(evaluated))
	for i := range evaluated {
		scores[i] = factorScore(evaluated[i].score, models.FactorTravelEfficiency)
	}
	best := 0
	for i := range scores {
		if scores[i] > scores[best] {
			best = i
		}
	}
	sorted := append([]float64{}, scores...)
	sort.Float64s(sorted)
	decile := sorted[len(sorted)*9/10]
	if scores[best] < decile || scores[best] <= 0 {
		return -1
	}
	return best
}

func factorScore(score models.AllocationScore, name string) float64 {
	for _, f := range score.Factors {
		if f.Name == name {
			return f.Score
		}
	}
	return 0
}

func slotBefore(a, b models.ScheduleSlot) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.Slot < b.Slot // "AM" sorts before "PM"
}

// explainSlot turns the top factors into a one-line explanation.
func explainSlot(score models.AllocationScore) string {
	strengths, concerns := score.TopFactors(2)
	if len(strengths) == 0 {
		return "A balanced option across timing, travel and price."
	}
	labels := make([]string, 0, len(strengths))
	for _, f := range strengths {
		labels = append(labels, strings.ReplaceAll(f.Name, "_", " "))
	}
	explanation := "Strong " + strings.Join(labels, " and ")
	if len(concerns) > 0 {
		explanation += "; watch " + strings.ReplaceAll(concerns[0].Name, "_", " ")
	}
	return explanation + "."
}

// buildSavings apportions the presented slots' discounts across the rule
// families.
func buildSavings(evaluated []evaluatedSlot) models.SavingsBreakdown {
	var savings models.SavingsBreakdown
	for _, ev := range evaluated {
		for _, adj := range ev.quote.Adjustments {
			if adj.Amount >= 0 {
				continue
			}
			amount := -adj.Amount
			savings.Total += amount
			switch adj.Rule {
			case RuleCluster:
				savings.Cluster += amount
			case RuleFlexibleDate:
				savings.Flex += amount
			default:
				savings.Other += amount
			}
		}
	}
	return savings
}

// buildFlexWoo proposes an alternative date when it beats the preferred-date
// price by the threshold. Fires only for exact-date requests with a stated
// preference.
func buildFlexWoo(req models.BookingRequest, evaluated []evaluatedSlot) *models.FlexibilityPrompt {
	if req.PreferredDate == nil || req.IsFlexible() {
		return nil
	}
	preferred := req.PreferredDate.Format(models.DateLayout)

	preferredPrice := -1.0
	altPrice := -1.0
	altDate := ""
	for _, ev := range evaluated {
		price := ev.quote.FinalPrice
		if ev.slot.Date == preferred {
			if preferredPrice < 0 || price < preferredPrice {
				preferredPrice = price
			}
		} else if altPrice < 0 || price < altPrice {
			altPrice = price
			altDate = ev.slot.Date
		}
	}
	if preferredPrice <= 0 || altPrice < 0 {
		return nil
	}

	saving := preferredPrice - altPrice
	savingPercent := saving / preferredPrice * 100
	if savingPercent < flexPromptThresholdPercent {
		return nil
	}
	return &models.FlexibilityPrompt{
		Message: fmt.Sprintf("Flexible on dates? Moving to %s would save £%.2f (%.0f%%).",
			altDate, saving, savingPercent),
		SuggestedDate:  altDate,
		SavingsAmount:  roundPence(saving),
		SavingsPercent: savingPercent,
	}
}
