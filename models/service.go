package models

// ServiceType is the closed enumeration of offered service categories.
// Estimation formulas are keyed on this type (see services/allocation),
// never on free-form slug strings.
type ServiceType string

const (
	ServicePATTesting       ServiceType = "pat_testing"
	ServiceFixedWireTesting ServiceType = "fixed_wire_testing"
	ServiceEmergencyLight   ServiceType = "emergency_lighting"
	ServiceFireAlarmTesting ServiceType = "fire_alarm_testing"
	ServiceBoilerService    ServiceType = "boiler_service"
)

// KnownServiceTypes lists every member of the closed enumeration.
var KnownServiceTypes = []ServiceType{
	ServicePATTesting,
	ServiceFixedWireTesting,
	ServiceEmergencyLight,
	ServiceFireAlarmTesting,
	ServiceBoilerService,
}

// Valid reports whether t is a member of the closed enumeration.
func (t ServiceType) Valid() bool {
	for _, known := range KnownServiceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Service is a catalogue entry: what the platform sells and at what base rate.
type Service struct {
	ID                 string      `bson:"id" json:"id"`
	Type               ServiceType `bson:"type" json:"type"`
	Name               string      `bson:"name" json:"name"`
	BasePrice          float64     `bson:"base_price" json:"basePrice"` // per unit
	MinCharge          float64     `bson:"min_charge" json:"minCharge"`
	MinutesPerUnit     float64     `bson:"minutes_per_unit" json:"minutesPerUnit"`
	CalloutFee         float64     `bson:"callout_fee" json:"calloutFee"`
	EstimatedBaseHours float64     `bson:"estimated_base_hours" json:"estimatedBaseHours"`
}
