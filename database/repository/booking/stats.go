package bookingRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fieldserve/models"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	statsLookbackDays = 90
	statsCacheKey     = "stats:cancellation:90d"
	statsCacheTTL     = 10 * time.Minute
	siteStatsTTL      = 10 * time.Minute
)

// CancellationStats returns the rolling 90-day aggregate snapshot. The
// snapshot is cached in Redis so per-candidate factor evaluation never
// triggers a history scan.
func (repo *MongoBookingRepo) CancellationStats(ctx context.Context) (*models.CancellationStats, error) {
	if repo.statsCache != nil {
		cached, err := repo.statsCache.Get(ctx, statsCacheKey).Result()
		if err == nil {
			var stats models.CancellationStats
			if jsonErr := json.Unmarshal([]byte(cached), &stats); jsonErr == nil {
				return &stats, nil
			}
		} else if err != redis.Nil {
			// Cache unavailable: fall through to the aggregation.
		}
	}

	stats, err := repo.aggregateCancellationStats(ctx)
	if err != nil {
		return nil, err
	}

	if repo.statsCache != nil {
		if payload, jsonErr := json.Marshal(stats); jsonErr == nil {
			repo.statsCache.Set(ctx, statsCacheKey, payload, statsCacheTTL)
		}
	}
	return stats, nil
}

func (repo *MongoBookingRepo) aggregateCancellationStats(ctx context.Context) (*models.CancellationStats, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	since := time.Now().AddDate(0, 0, -statsLookbackDays).Format(models.DateLayout)
	cursor, err := repo.bookingColl.Find(ctxWithTimeout, bson.M{"date": bson.M{"$gte": since}})
	if err != nil {
		return nil, fmt.Errorf("error loading booking window: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	stats := &models.CancellationStats{
		ByWeekday: map[string]models.RateSample{},
		ByService: map[string]models.RateSample{},
		BySlot:    map[string]models.RateSample{},
	}

	type bucket struct{ total, cancelled int }
	byWeekday := map[string]*bucket{}
	byService := map[string]*bucket{}
	bySlot := map[string]*bucket{}
	var total, cancelled int

	for cursor.Next(ctxWithTimeout) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			continue
		}
		isCancelled := b.Status == models.BookingStatusCancelled
		total++
		if isCancelled {
			cancelled++
		}

		add := func(m map[string]*bucket, key string) {
			if key == "" {
				return
			}
			bk := m[key]
			if bk == nil {
				bk = &bucket{}
				m[key] = bk
			}
			bk.total++
			if isCancelled {
				bk.cancelled++
			}
		}
		if day, err := time.Parse(models.DateLayout, b.Date); err == nil {
			add(byWeekday, day.Weekday().String())
		}
		add(byService, b.ServiceID)
		add(bySlot, b.Slot)
	}

	stats.Samples = total
	if total > 0 {
		stats.BaseRate = float64(cancelled) / float64(total)
	}
	fill := func(dst map[string]models.RateSample, src map[string]*bucket) {
		for key, bk := range src {
			dst[key] = models.RateSample{
				Rate:    float64(bk.cancelled) / float64(bk.total),
				Samples: bk.total,
			}
		}
	}
	fill(stats.ByWeekday, byWeekday)
	fill(stats.ByService, byService)
	fill(stats.BySlot, bySlot)

	return stats, nil
}

// SiteStats returns the booking history for one site, cached briefly.
func (repo *MongoBookingRepo) SiteStats(ctx context.Context, siteID string) (*models.SiteStats, error) {
	cacheKey := "stats:site:" + siteID
	if repo.statsCache != nil {
		cached, err := repo.statsCache.Get(ctx, cacheKey).Result()
		if err == nil {
			var stats models.SiteStats
			if jsonErr := json.Unmarshal([]byte(cached), &stats); jsonErr == nil {
				return &stats, nil
			}
		}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	total, err := repo.bookingColl.CountDocuments(ctxWithTimeout, bson.M{"site_id": siteID})
	if err != nil {
		return nil, fmt.Errorf("error counting site bookings: %w", err)
	}
	cancelledCount, err := repo.bookingColl.CountDocuments(ctxWithTimeout, bson.M{
		"site_id": siteID,
		"status":  models.BookingStatusCancelled,
	})
	if err != nil {
		return nil, fmt.Errorf("error counting site cancellations: %w", err)
	}

	stats := &models.SiteStats{
		SiteID:        siteID,
		TotalBookings: int(total),
		Cancellations: int(cancelledCount),
	}
	if repo.statsCache != nil {
		if payload, jsonErr := json.Marshal(stats); jsonErr == nil {
			repo.statsCache.Set(ctx, cacheKey, payload, siteStatsTTL)
		}
	}
	return stats, nil
}
