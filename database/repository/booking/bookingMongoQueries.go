package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"fieldserve/models"

	"go.mongodb.org/mongo-driver/bson"
)

// WeekStats aggregates one engineer's confirmed load over a date range.
func (repo *MongoBookingRepo) WeekStats(ctx context.Context, engineerID, weekStart, weekEnd string) (*models.EngineerWeekStats, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{
			"engineer_id": engineerID,
			"status":      models.BookingStatusConfirmed,
			"date":        bson.M{"$gte": weekStart, "$lte": weekEnd},
		}},
		{"$group": bson.M{
			"_id":       "$engineer_id",
			"job_count": bson.M{"$sum": 1},
			"revenue":   bson.M{"$sum": "$total_price"},
		}},
	}
	cursor, err := repo.bookingColl.Aggregate(ctxWithTimeout, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating week stats for %s: %w", engineerID, err)
	}
	defer cursor.Close(ctxWithTimeout)

	stats := &models.EngineerWeekStats{EngineerID: engineerID}
	if cursor.Next(ctxWithTimeout) {
		var row struct {
			JobCount int     `bson:"job_count"`
			Revenue  float64 `bson:"revenue"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("error decoding week stats: %w", err)
		}
		stats.JobCount = row.JobCount
		stats.Revenue = row.Revenue
	}
	return stats, nil
}

// CohortAverage returns the mean weekly job count across engineers active in
// the range.
func (repo *MongoBookingRepo) CohortAverage(ctx context.Context, weekStart, weekEnd string) (float64, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{
			"status": models.BookingStatusConfirmed,
			"date":   bson.M{"$gte": weekStart, "$lte": weekEnd},
		}},
		{"$group": bson.M{"_id": "$engineer_id", "job_count": bson.M{"$sum": 1}}},
		{"$group": bson.M{"_id": nil, "avg": bson.M{"$avg": "$job_count"}}},
	}
	cursor, err := repo.bookingColl.Aggregate(ctxWithTimeout, pipeline)
	if err != nil {
		return 0, fmt.Errorf("error aggregating cohort average: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	if cursor.Next(ctxWithTimeout) {
		var row struct {
			Avg float64 `bson:"avg"`
		}
		if err := cursor.Decode(&row); err != nil {
			return 0, fmt.Errorf("error decoding cohort average: %w", err)
		}
		return row.Avg, nil
	}
	return 0, nil
}

// CountOnDay returns the engineer's confirmed jobs on the date.
func (repo *MongoBookingRepo) CountOnDay(ctx context.Context, engineerID, date string) (int, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := repo.bookingColl.CountDocuments(ctxWithTimeout, bson.M{
		"engineer_id": engineerID,
		"date":        date,
		"status":      models.BookingStatusConfirmed,
	})
	if err != nil {
		return 0, fmt.Errorf("error counting bookings on %s: %w", date, err)
	}
	return int(count), nil
}

// HasConflict reports whether an active booking already holds the triple.
func (repo *MongoBookingRepo) HasConflict(ctx context.Context, engineerID, date, slot string) (bool, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := repo.bookingColl.CountDocuments(ctxWithTimeout, bson.M{
		"engineer_id": engineerID,
		"date":        date,
		"slot":        slot,
		"status":      models.BookingStatusConfirmed,
	})
	if err != nil {
		return false, fmt.Errorf("error checking slot conflict: %w", err)
	}
	return count > 0, nil
}

// CountNearby counts confirmed bookings on the date whose site lies within
// radiusKm of the location.
func (repo *MongoBookingRepo) CountNearby(ctx context.Context, date string, location models.GeoPoint, radiusKm float64) (int, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if len(location.Coordinates) < 2 {
		return 0, nil
	}

	// Site ids within the radius, then bookings on the date at those sites.
	const earthRadiusKm = 6371.0
	siteCursor, err := repo.siteColl.Find(ctxWithTimeout, bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": []interface{}{location.Coordinates, radiusKm / earthRadiusKm},
			},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("error finding nearby sites: %w", err)
	}
	defer siteCursor.Close(ctxWithTimeout)

	var siteIDs []string
	for siteCursor.Next(ctxWithTimeout) {
		var site models.Site
		if err := siteCursor.Decode(&site); err != nil {
			continue
		}
		siteIDs = append(siteIDs, site.ID)
	}
	if len(siteIDs) == 0 {
		return 0, nil
	}

	count, err := repo.bookingColl.CountDocuments(ctxWithTimeout, bson.M{
		"date":    date,
		"status":  models.BookingStatusConfirmed,
		"site_id": bson.M{"$in": siteIDs},
	})
	if err != nil {
		return 0, fmt.Errorf("error counting nearby bookings: %w", err)
	}
	return int(count), nil
}

// JobsForDay returns the engineer's confirmed stops for the date with site
// coordinates attached.
func (repo *MongoBookingRepo) JobsForDay(ctx context.Context, engineerID, date string) ([]models.RouteJob, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{
			"engineer_id": engineerID,
			"date":        date,
			"status":      models.BookingStatusConfirmed,
		}},
		{"$lookup": bson.M{
			"from":         "sites",
			"localField":   "site_id",
			"foreignField": "id",
			"as":           "site",
		}},
		{"$unwind": bson.M{"path": "$site", "preserveNullAndEmptyArrays": true}},
		{"$project": bson.M{
			"booking_id": "$id",
			"site_id":    "$site_id",
			"slot":       "$slot",
			"postcode":   "$site.postcode",
			"location":   "$site.location",
		}},
		{"$sort": bson.M{"slot": 1}},
	}
	cursor, err := repo.bookingColl.Aggregate(ctxWithTimeout, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error loading day jobs for %s: %w", engineerID, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var jobs []models.RouteJob
	if err := cursor.All(ctxWithTimeout, &jobs); err != nil {
		return nil, fmt.Errorf("error decoding day jobs: %w", err)
	}
	return jobs, nil
}
