package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"bus_dispatch/internal/geo"
	"bus_dispatch/internal/models"
)

// StartingPointName labels the organization's home anchor stop.
const StartingPointName = "Starting Point"

var errOracleUnconfigured = errors.New("no routing oracle configured")

// PlannerMetrics is implemented by the metrics collector; a nil field
// disables instrumentation.
type PlannerMetrics interface {
	OracleCallInc()
	OracleFallbackInc()
}

// StopPlanner builds the ordered stop list for a bus from its assigned
// passengers. It consults the routing oracle for a travel-time-minimal
// order and degrades to a deterministic alphabetical ordering on any
// oracle failure; it never fails outright on oracle trouble.
type StopPlanner struct {
	Passengers PassengerStore
	Orgs       OrganizationStore
	Oracle     geo.Oracle
	Timeout    time.Duration
	Metrics    PlannerMetrics
}

// GenerateStops returns unsaved Stop records with dense 1-based sequence
// numbers and "HH:MM" arrival estimates derived from startTime. An empty
// result means the bus has no active passengers; the caller must reject
// route creation in that case.
func (p *StopPlanner) GenerateStops(ctx context.Context, orgID, busID uint, startTime string) ([]models.Stop, error) {
	baseHour, baseMin, err := ParseClock(startTime)
	if err != nil {
		return nil, err
	}
	baseMinutes := baseHour*60 + baseMin

	passengers, err := p.Passengers.ActiveByBus(busID)
	if err != nil {
		return nil, err
	}
	if len(passengers) == 0 {
		return []models.Stop{}, nil
	}
	if len(passengers) == 1 {
		return []models.Stop{passengerStop(passengers[0], 1, FormatClock(baseMinutes))}, nil
	}

	origin := p.homeAnchor(orgID)
	waypoints := make([]geo.Waypoint, len(passengers))
	for i, pa := range passengers {
		waypoints[i] = geo.Waypoint{Name: pa.Name, Lat: pa.PickupLat, Lng: pa.PickupLng}
	}

	optimized, err := p.optimize(ctx, origin, waypoints)
	if err != nil {
		logrus.WithError(err).WithField("bus_id", busID).Warn("stop planner: oracle unavailable, using fallback order")
		if p.Metrics != nil {
			p.Metrics.OracleFallbackInc()
		}
		return fallbackStops(passengers, FormatClock(baseMinutes)), nil
	}

	stops := make([]models.Stop, 0, len(passengers)+1)
	seq := 1
	if origin != nil {
		stops = append(stops, models.Stop{
			Name: StartingPointName,
			Seq:  seq,
			Lat:  origin.Lat,
			Lng:  origin.Lng,
			ETA:  FormatClock(baseMinutes),
		})
		seq++
	}

	elapsed := 0.0
	for i, idx := range optimized.Order {
		elapsed += optimized.LegSeconds[i]
		stops = append(stops, passengerStop(passengers[idx], seq, FormatClock(baseMinutes+int(elapsed/60))))
		seq++
	}
	return stops, nil
}

func (p *StopPlanner) optimize(ctx context.Context, origin *geo.Waypoint, waypoints []geo.Waypoint) (*geo.OptimizedRoute, error) {
	if p.Oracle == nil {
		return nil, errOracleUnconfigured
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if p.Metrics != nil {
		p.Metrics.OracleCallInc()
	}
	return p.Oracle.Optimize(ctx, origin, waypoints)
}

// homeAnchor returns the organization's home coordinate, or nil when none
// is configured.
func (p *StopPlanner) homeAnchor(orgID uint) *geo.Waypoint {
	org, err := p.Orgs.ByID(orgID)
	if err != nil || (org.HomeLat == 0 && org.HomeLng == 0) {
		return nil
	}
	return &geo.Waypoint{Name: StartingPointName, Lat: org.HomeLat, Lng: org.HomeLng}
}

func passengerStop(p models.Passenger, seq int, eta string) models.Stop {
	pid := p.ID
	return models.Stop{
		Name:        p.Name,
		Address:     p.PickupAddress,
		Seq:         seq,
		Lat:         p.PickupLat,
		Lng:         p.PickupLng,
		ETA:         eta,
		PassengerID: &pid,
	}
}

// fallbackStops emits passengers in alphabetical order, all carrying the
// requested start time, with no fabricated optimization.
func fallbackStops(passengers []models.Passenger, startTime string) []models.Stop {
	sorted := make([]models.Passenger, len(passengers))
	copy(sorted, passengers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	stops := make([]models.Stop, len(sorted))
	for i, pa := range sorted {
		stops[i] = passengerStop(pa, i+1, startTime)
	}
	return stops
}
