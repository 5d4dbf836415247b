package allocation

import (
	"context"
	"errors"
	"fmt"

	"fieldserve/database/repository"
	"fieldserve/models"

	"go.uber.org/zap"
)

// In-memory repositories for service-level tests. Each fake answers from its
// maps and reports a missing key as an error, matching the mongo repos'
// behaviour.

type fakeEngineerRepo struct {
	engineers      map[string]models.EngineerWithProfile
	unavailability map[string][]models.Unavailability
}

func (f *fakeEngineerRepo) GetByID(_ context.Context, id string) (*models.EngineerWithProfile, error) {
	eng, ok := f.engineers[id]
	if !ok {
		return nil, fmt.Errorf("engineer %s not found", id)
	}
	return &eng, nil
}

func (f *fakeEngineerRepo) ListByCompetency(_ context.Context, serviceType models.ServiceType) ([]models.EngineerWithProfile, error) {
	var out []models.EngineerWithProfile
	for _, eng := range f.engineers {
		if eng.Active && eng.HasCompetency(string(serviceType)) {
			out = append(out, eng)
		}
	}
	return out, nil
}

func (f *fakeEngineerRepo) ListUnavailability(_ context.Context, engineerID, from, to string) ([]models.Unavailability, error) {
	var out []models.Unavailability
	for _, u := range f.unavailability[engineerID] {
		if u.Date >= from && u.Date <= to {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeBookingRepo struct {
	weekStats map[string]models.EngineerWeekStats // engineerID
	cohortAvg float64
	dayCounts map[string]int  // engineerID|date
	conflicts map[string]bool // engineerID|date|slot
	nearby    map[string]int  // date
	jobs      map[string][]models.RouteJob // engineerID|date
	stats     models.CancellationStats
	siteStats map[string]models.SiteStats
	committed []models.Booking
	upcoming  []models.Booking
	prepaid   map[string]bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		weekStats: map[string]models.EngineerWeekStats{},
		dayCounts: map[string]int{},
		conflicts: map[string]bool{},
		nearby:    map[string]int{},
		jobs:      map[string][]models.RouteJob{},
		siteStats: map[string]models.SiteStats{},
		prepaid:   map[string]bool{},
	}
}

func (f *fakeBookingRepo) WeekStats(_ context.Context, engineerID, _, _ string) (*models.EngineerWeekStats, error) {
	stats := f.weekStats[engineerID]
	stats.EngineerID = engineerID
	return &stats, nil
}

func (f *fakeBookingRepo) CohortAverage(_ context.Context, _, _ string) (float64, error) {
	return f.cohortAvg, nil
}

func (f *fakeBookingRepo) CountOnDay(_ context.Context, engineerID, date string) (int, error) {
	return f.dayCounts[engineerID+"|"+date], nil
}

func (f *fakeBookingRepo) HasConflict(_ context.Context, engineerID, date, slot string) (bool, error) {
	return f.conflicts[engineerID+"|"+date+"|"+slot], nil
}

func (f *fakeBookingRepo) CountNearby(_ context.Context, date string, _ models.GeoPoint, _ float64) (int, error) {
	return f.nearby[date], nil
}

func (f *fakeBookingRepo) JobsForDay(_ context.Context, engineerID, date string) ([]models.RouteJob, error) {
	return f.jobs[engineerID+"|"+date], nil
}

func (f *fakeBookingRepo) CancellationStats(_ context.Context) (*models.CancellationStats, error) {
	stats := f.stats
	return &stats, nil
}

func (f *fakeBookingRepo) SiteStats(_ context.Context, siteID string) (*models.SiteStats, error) {
	stats, ok := f.siteStats[siteID]
	if !ok {
		return nil, fmt.Errorf("site stats %s not found", siteID)
	}
	return &stats, nil
}

func (f *fakeBookingRepo) Commit(_ context.Context, booking *models.Booking) error {
	key := booking.EngineerID + "|" + booking.Date + "|" + booking.Slot
	if f.conflicts[key] {
		return repository.ErrSlotConflict
	}
	f.conflicts[key] = true
	booking.Status = models.BookingStatusConfirmed
	f.committed = append(f.committed, *booking)
	return nil
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	for _, b := range f.committed {
		if b.ID == id {
			return &b, nil
		}
	}
	for _, b := range f.upcoming {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, fmt.Errorf("booking %s not found", id)
}

func (f *fakeBookingRepo) ListUpcoming(_ context.Context, _ int) ([]models.Booking, error) {
	return f.upcoming, nil
}

func (f *fakeBookingRepo) MarkPrepaid(_ context.Context, bookingID string) error {
	f.prepaid[bookingID] = true
	return nil
}

type fakeCatalogRepo struct {
	services  map[string]models.Service
	sites     map[string]models.Site
	customers map[string]models.Customer
}

func (f *fakeCatalogRepo) GetService(_ context.Context, id string) (*models.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, fmt.Errorf("service %s not found", id)
	}
	return &svc, nil
}

func (f *fakeCatalogRepo) GetSite(_ context.Context, id string) (*models.Site, error) {
	site, ok := f.sites[id]
	if !ok {
		return nil, fmt.Errorf("site %s not found", id)
	}
	return &site, nil
}

func (f *fakeCatalogRepo) GetCustomer(_ context.Context, id string) (*models.Customer, error) {
	customer, ok := f.customers[id]
	if !ok {
		return nil, errors.New("customer not found")
	}
	return &customer, nil
}

type fakeConfigRepo struct {
	weights models.ScoringWeights
	rules   models.PricingRules
}

func (f *fakeConfigRepo) ScoringWeights(_ context.Context) (models.ScoringWeights, error) {
	return f.weights, nil
}

func (f *fakeConfigRepo) PricingRules(_ context.Context) (models.PricingRules, error) {
	return f.rules, nil
}

// newTestService wires a service over one competent, covering engineer and a
// PAT-testing catalogue.
func newTestService() (*DefaultAllocationService, *fakeBookingRepo, *fakeEngineerRepo, *fakeCatalogRepo) {
	engineers := &fakeEngineerRepo{
		engineers: map[string]models.EngineerWithProfile{
			"eng-1": {
				ID:   "eng-1",
				Name: "Sam Carter",
				Profile: models.EngineerProfile{
					YearsExperience: 8,
					DayRate:         300,
				},
				Competencies:      []models.Competency{{ServiceType: string(models.ServicePATTesting)}},
				CoverageAreas:     []models.CoverageArea{{PostcodePrefix: "SW", RadiusKm: 30}},
				PreferredRadiusKm: 30,
				BaseLocation:      models.NewGeoPoint(51.45, -0.15),
				Active:            true,
			},
		},
		unavailability: map[string][]models.Unavailability{},
	}
	bookings := newFakeBookingRepo()
	bookings.cohortAvg = 4
	catalog := &fakeCatalogRepo{
		services: map[string]models.Service{
			"svc-pat": {
				ID:             "svc-pat",
				Type:           models.ServicePATTesting,
				Name:           "PAT Testing",
				BasePrice:      0.45,
				MinCharge:      50,
				MinutesPerUnit: 2,
			},
		},
		sites: map[string]models.Site{
			"site-1": {
				ID:         "site-1",
				CustomerID: "cust-1",
				Postcode:   "SW1A 1AA",
				Location:   models.NewGeoPoint(51.50, -0.12),
			},
		},
		customers: map[string]models.Customer{
			"cust-1": {ID: "cust-1", TotalBookings: 6, CompletedBookings: 6},
		},
	}
	configs := &fakeConfigRepo{
		weights: models.DefaultScoringWeights(),
		rules:   models.DefaultPricingRules(),
	}

	svc := NewDefaultAllocationService(engineers, bookings, catalog, configs, zap.NewNop())
	return svc, bookings, engineers, catalog
}
