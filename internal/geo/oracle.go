package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OptimizedRoute is the oracle's answer for a set of waypoints: the order
// in which to visit them, the travel time of each leg and the total
// distance of the resulting tour.
type OptimizedRoute struct {
	// Order[i] is the index into the submitted waypoint slice of the i-th
	// stop to visit. When an origin was supplied it is excluded from Order.
	Order []int
	// LegSeconds[i] is the travel time of the leg arriving at Order[i].
	LegSeconds []float64
	DistanceKM float64
}

// Oracle orders waypoints for minimal travel time. Implementations wrap an
// external routing service and must honour the context deadline.
type Oracle interface {
	Optimize(ctx context.Context, origin *Waypoint, stops []Waypoint) (*OptimizedRoute, error)
}

// HTTPOracle calls an OSRM-compatible trip endpoint
// (GET {base}/trip/v1/driving/{lng,lat;...}).
type HTTPOracle struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPOracle(baseURL string, timeout time.Duration) *HTTPOracle {
	return &HTTPOracle{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// osrm wire structures, only the fields the sequencer consumes.
type osrmTripResponse struct {
	Code      string `json:"code"`
	Waypoints []struct {
		WaypointIndex int `json:"waypoint_index"`
	} `json:"waypoints"`
	Trips []struct {
		Distance float64 `json:"distance"` // meters
		Legs     []struct {
			Duration float64 `json:"duration"` // seconds
		} `json:"legs"`
	} `json:"trips"`
}

func (o *HTTPOracle) Optimize(ctx context.Context, origin *Waypoint, stops []Waypoint) (*OptimizedRoute, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("oracle: no waypoints to optimize")
	}

	coords := make([]string, 0, len(stops)+1)
	if origin != nil {
		coords = append(coords, fmt.Sprintf("%f,%f", origin.Lng, origin.Lat))
	}
	for _, w := range stops {
		coords = append(coords, fmt.Sprintf("%f,%f", w.Lng, w.Lat))
	}

	url := fmt.Sprintf("%s/trip/v1/driving/%s?source=first&roundtrip=false",
		o.BaseURL, strings.Join(coords, ";"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle: unexpected status %d", resp.StatusCode)
	}

	var body osrmTripResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("oracle: decoding response: %w", err)
	}
	if body.Code != "Ok" || len(body.Trips) == 0 {
		return nil, fmt.Errorf("oracle: no trip in response (code %q)", body.Code)
	}
	if len(body.Waypoints) != len(coords) {
		return nil, fmt.Errorf("oracle: got %d waypoints for %d coordinates", len(body.Waypoints), len(coords))
	}

	offset := 0
	if origin != nil {
		offset = 1
	}

	// Invert the per-input visit positions into visiting order, dropping
	// the origin so Order indexes the submitted stops slice.
	order := make([]int, len(coords))
	for inputIdx, wp := range body.Waypoints {
		if wp.WaypointIndex < 0 || wp.WaypointIndex >= len(order) {
			return nil, fmt.Errorf("oracle: waypoint_index %d out of range", wp.WaypointIndex)
		}
		order[wp.WaypointIndex] = inputIdx
	}

	trip := body.Trips[0]
	legs := make([]float64, 0, len(stops))
	stopOrder := make([]int, 0, len(stops))
	for visitPos, inputIdx := range order {
		if inputIdx < offset {
			continue // origin anchor
		}
		stopOrder = append(stopOrder, inputIdx-offset)
		// legs[i] in the OSRM response arrives at visit position i+1
		legIdx := visitPos - 1
		if origin == nil && visitPos == 0 {
			// first stop of an unanchored tour: no travel leg
			legs = append(legs, 0)
			continue
		}
		if legIdx < 0 || legIdx >= len(trip.Legs) {
			return nil, fmt.Errorf("oracle: leg %d missing from response", legIdx)
		}
		legs = append(legs, trip.Legs[legIdx].Duration)
	}

	return &OptimizedRoute{
		Order:      stopOrder,
		LegSeconds: legs,
		DistanceKM: trip.Distance / 1000.0,
	}, nil
}
