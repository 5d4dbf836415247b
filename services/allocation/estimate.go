package allocation

import (
	"math"

	"fieldserve/models"
)

// estimator maps a service catalogue entry and quantity to a base price.
// The table is keyed on the closed ServiceType enumeration so adding a new
// service type without an estimator is an explicit gap, not a silent
// fall-through.
type estimator func(svc models.Service, qty int) float64

var estimators = map[models.ServiceType]estimator{
	// Per-item testing, subject to a minimum charge for small jobs.
	models.ServicePATTesting: func(svc models.Service, qty int) float64 {
		return math.Max(svc.BasePrice*float64(qty), svc.MinCharge)
	},
	// Circuit-count pricing on top of a fixed callout fee.
	models.ServiceFixedWireTesting: func(svc models.Service, qty int) float64 {
		return math.Max(svc.CalloutFee+svc.BasePrice*float64(qty), svc.MinCharge)
	},
	// Per-fitting checks with a minimum visit charge.
	models.ServiceEmergencyLight: func(svc models.Service, qty int) float64 {
		return math.Max(svc.BasePrice*float64(qty), svc.MinCharge)
	},
	// Per-device testing plus callout.
	models.ServiceFireAlarmTesting: func(svc models.Service, qty int) float64 {
		return math.Max(svc.CalloutFee+svc.BasePrice*float64(qty), svc.MinCharge)
	},
	// Fixed-price visit; quantity counts appliances beyond the first.
	models.ServiceBoilerService: func(svc models.Service, qty int) float64 {
		extra := 0.0
		if qty > 1 {
			extra = svc.BasePrice * float64(qty-1)
		}
		return math.Max(svc.MinCharge+extra, svc.MinCharge)
	},
}

// EstimateBasePrice returns the naive pre-adjustment price for a service and
// quantity. Unknown service types fall back to the per-unit formula with the
// minimum charge applied.
func EstimateBasePrice(svc models.Service, qty int) float64 {
	if qty < 0 {
		qty = 0
	}
	if est, ok := estimators[svc.Type]; ok {
		return est(svc, qty)
	}
	return math.Max(svc.BasePrice*float64(qty), svc.MinCharge)
}

// EstimateDurationMinutes returns the expected on-site duration.
func EstimateDurationMinutes(svc models.Service, qty int) int {
	if qty < 0 {
		qty = 0
	}
	minutes := svc.EstimatedBaseHours*60 + svc.MinutesPerUnit*float64(qty)
	if minutes < 30 {
		minutes = 30
	}
	return int(math.Round(minutes))
}
