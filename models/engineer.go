package models

import "strings"

// Competency marks a service type the engineer is approved to perform.
type Competency struct {
	ServiceType string `bson:"service_type" json:"serviceType"`
	Level       string `bson:"level,omitempty" json:"level,omitempty"`
}

// CoverageArea describes where an engineer is willing to travel:
// a postcode prefix plus a radius around its centre.
type CoverageArea struct {
	PostcodePrefix string `bson:"postcode_prefix" json:"postcodePrefix"`
	RadiusKm       float64 `bson:"radius_km" json:"radiusKm"`
}

// Matches reports whether the area's postcode prefix is a prefix of the
// given postcode. Comparison is case-insensitive and ignores spaces.
func (a CoverageArea) Matches(postcode string) bool {
	return strings.HasPrefix(normalizePostcode(postcode), normalizePostcode(a.PostcodePrefix))
}

func normalizePostcode(pc string) string {
	return strings.ToUpper(strings.ReplaceAll(pc, " ", ""))
}

// Qualification is a certification held by the engineer.
type Qualification struct {
	Name      string `bson:"name" json:"name"`
	ExpiresAt string `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
}

// EngineerProfile holds the commercial profile fields.
type EngineerProfile struct {
	YearsExperience int     `bson:"years_experience" json:"yearsExperience"`
	DayRate         float64 `bson:"day_rate" json:"dayRate"`
}

// EngineerWithProfile is a read-only snapshot of an engineer used during one
// scoring pass. Snapshots are refreshed per request; staleness within a single
// request is acceptable.
type EngineerWithProfile struct {
	ID                string          `bson:"id" json:"id"`
	Name              string          `bson:"name" json:"name"`
	Profile           EngineerProfile `bson:"profile" json:"profile"`
	Competencies      []Competency    `bson:"competencies" json:"competencies"`
	CoverageAreas     []CoverageArea  `bson:"coverage_areas" json:"coverageAreas"`
	Qualifications    []Qualification `bson:"qualifications" json:"qualifications"`
	BasePostcode      string          `bson:"base_postcode" json:"basePostcode"`
	PreferredRadiusKm float64         `bson:"preferred_radius_km" json:"preferredRadiusKm"`
	BaseLocation      GeoPoint        `bson:"base_location" json:"baseLocation"`
	Active            bool            `bson:"active" json:"active"`
}

// HasCompetency reports whether the engineer holds a competency for the
// given service type.
func (e EngineerWithProfile) HasCompetency(serviceType string) bool {
	for _, c := range e.Competencies {
		if c.ServiceType == serviceType {
			return true
		}
	}
	return false
}

// CoversPostcode reports whether any coverage area's prefix matches the
// site postcode.
func (e EngineerWithProfile) CoversPostcode(postcode string) bool {
	for _, area := range e.CoverageAreas {
		if area.Matches(postcode) {
			return true
		}
	}
	return false
}
