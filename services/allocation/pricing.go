package allocation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"fieldserve/models"
)

// Pricing rule identifiers, in application order.
const (
	RuleCluster      = "cluster_discount"
	RuleFlexibleDate = "flexible_date_discount"
	RuleUrgency      = "urgency_premium"
	RuleOffPeak      = "off_peak_discount"
	RuleLoyalty      = "loyalty_discount"
	RuleMarginFloor  = "margin_floor"
)

// PriceContext is everything the pricing engine needs for one candidate.
type PriceContext struct {
	Request        models.BookingRequest
	Slot           models.ScheduleSlot
	Engineer       models.EngineerWithProfile
	Customer       models.Customer
	Service        models.Service
	BasePrice      float64
	NearbyJobCount int
	Now            time.Time
}

// EngineerCost returns the cost of the engineer's half-day.
func (pc PriceContext) EngineerCost() float64 {
	return pc.Engineer.Profile.DayRate / 2
}

// CalculatePrice applies the rule stack to the base price in a fixed,
// documented order (cluster, flexible date, urgency, off-peak, loyalty) so
// quotes are deterministic and explainable, then enforces the minimum
// margin floor. Discount stacking must never produce a loss-making booking.
func CalculatePrice(pc PriceContext, rules models.PricingRules) models.PriceQuote {
	base := pc.BasePrice
	var adjustments []models.PriceAdjustment

	discount := func(rule string, percent float64, reason string) {
		adjustments = append(adjustments, models.PriceAdjustment{
			Rule:    rule,
			Percent: percent,
			Amount:  -base * percent / 100,
			Reason:  reason,
		})
	}
	premium := func(rule string, percent float64, reason string) {
		adjustments = append(adjustments, models.PriceAdjustment{
			Rule:    rule,
			Percent: percent,
			Amount:  base * percent / 100,
			Reason:  reason,
		})
	}

	// 1. Cluster discount.
	if rules.Cluster.Enabled && pc.NearbyJobCount >= rules.Cluster.MinNearbyJobs {
		discount(RuleCluster, rules.Cluster.DiscountPercent,
			fmt.Sprintf("%d jobs already nearby on the day", pc.NearbyJobCount))
	}

	// 2. Flexible-date discount.
	if rules.FlexibleDate.Enabled && pc.Request.IsFlexible() {
		discount(RuleFlexibleDate, rules.FlexibleDate.DiscountPercent, "flexible date accepted")
	}

	// 3. Urgency premium.
	if rules.Urgency.Enabled {
		if days := leadTimeDays(pc.Now, pc.Slot.Date); days >= 0 && days <= rules.Urgency.DaysThreshold {
			if days == 0 {
				premium(RuleUrgency, rules.Urgency.SameDayPercent, "same-day booking")
			} else {
				premium(RuleUrgency, rules.Urgency.NextDayPercent, "short-notice booking")
			}
		}
	}

	// 4. Off-peak discount.
	if rules.OffPeak.Enabled {
		if day, err := time.Parse(models.DateLayout, pc.Slot.Date); err == nil {
			for _, offPeak := range rules.OffPeak.Days {
				if day.Weekday().String() == offPeak {
					discount(RuleOffPeak, rules.OffPeak.DiscountPercent, offPeak+" off-peak rate")
					break
				}
			}
		}
	}

	// 5. Loyalty discount.
	if rules.Loyalty.Enabled && pc.Customer.CompletedBookings >= rules.Loyalty.MinBookings {
		discount(RuleLoyalty, rules.Loyalty.DiscountPercent,
			fmt.Sprintf("%d completed bookings", pc.Customer.CompletedBookings))
	}

	engineerCost := pc.EngineerCost()
	floor := engineerCost * (1 + rules.MinimumMarginPercent/100)
	adjustments = enforceMarginFloor(base, floor, adjustments)

	final := base
	var totalDiscount float64
	for _, adj := range adjustments {
		final += adj.Amount
		if adj.Amount < 0 {
			totalDiscount -= adj.Amount
		}
	}

	quote := models.PriceQuote{
		BasePrice:     roundPence(base),
		Adjustments:   adjustments,
		TotalDiscount: roundPence(totalDiscount),
		FinalPrice:    roundPence(final),
		EngineerCost:  roundPence(engineerCost),
	}
	if base > 0 {
		quote.EffectiveDiscountPercent = math.Max(0, (base-final)/base*100)
	}
	if engineerCost > 0 {
		quote.MarginPercent = (quote.FinalPrice - engineerCost) / engineerCost * 100
	}
	return quote
}

// enforceMarginFloor scales discounts back, largest first, until the final
// price clears the floor. If removing every discount still leaves the price
// below the floor (the base itself is under water), a margin_floor
// adjustment lifts it the rest of the way.
func enforceMarginFloor(base, floor float64, adjustments []models.PriceAdjustment) []models.PriceAdjustment {
	final := base
	for _, adj := range adjustments {
		final += adj.Amount
	}
	if final >= floor {
		return adjustments
	}
	deficit := floor - final

	// Largest discount first.
	order := make([]int, 0, len(adjustments))
	for i, adj := range adjustments {
		if adj.Amount < 0 {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool {
		return adjustments[order[a]].Amount < adjustments[order[b]].Amount
	})

	for _, idx := range order {
		if deficit <= 0 {
			break
		}
		available := -adjustments[idx].Amount
		giveBack := math.Min(available, deficit)
		adjustments[idx].Amount += giveBack
		if base > 0 {
			adjustments[idx].Percent = -adjustments[idx].Amount / base * 100
		}
		adjustments[idx].Reason += " (reduced to protect margin)"
		deficit -= giveBack
	}

	if deficit > 0 {
		adjustments = append(adjustments, models.PriceAdjustment{
			Rule:   RuleMarginFloor,
			Amount: deficit,
			Reason: "minimum margin applied",
		})
	}
	return adjustments
}

func roundPence(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculatePrice assembles the pricing context from the repositories and
// runs the engine for one candidate slot.
func (s *DefaultAllocationService) CalculatePrice(ctx context.Context, req models.BookingRequest, slot models.ScheduleSlot) (*models.PriceQuote, error) {
	rules, err := s.ConfigSrc.PricingRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing rules: %w", err)
	}
	svc, err := s.Catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, NewDataMissingError(fmt.Sprintf("service %s: %v", req.ServiceID, err))
	}
	engineer, err := s.Engineers.GetByID(ctx, slot.EngineerID)
	if err != nil {
		return nil, NewDataMissingError(fmt.Sprintf("engineer %s: %v", slot.EngineerID, err))
	}

	customer := models.Customer{ID: req.CustomerID}
	if c, err := s.Catalog.GetCustomer(ctx, req.CustomerID); err == nil {
		customer = *c
	}

	base := slot.EstimatedPrice
	if base <= 0 {
		base = EstimateBasePrice(*svc, req.EstimatedQty)
	}

	quote := CalculatePrice(PriceContext{
		Request:        req,
		Slot:           slot,
		Engineer:       *engineer,
		Customer:       customer,
		Service:        *svc,
		BasePrice:      base,
		NearbyJobCount: slot.NearbyJobCount,
		Now:            time.Now(),
	}, rules)
	return &quote, nil
}
