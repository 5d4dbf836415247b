package models

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoPoint builds a GeoJSON point from a latitude/longitude pair.
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

// LatLon returns the latitude and longitude of the point.
// ok is false when the point carries no usable coordinates.
func (p GeoPoint) LatLon() (lat, lon float64, ok bool) {
	if len(p.Coordinates) < 2 {
		return 0, 0, false
	}
	return p.Coordinates[1], p.Coordinates[0], true
}

// DateLayout is the canonical date format used across booking records.
const DateLayout = "2006-01-02"

// Half-day slot identifiers.
const (
	SlotAM = "AM"
	SlotPM = "PM"
)
