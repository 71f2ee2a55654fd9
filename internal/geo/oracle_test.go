package geo

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func osrmBody(code string, waypointIndexes []int, legDurations []float64, distance float64) string {
	wps := make([]string, len(waypointIndexes))
	for i, wi := range waypointIndexes {
		wps[i] = fmt.Sprintf(`{"waypoint_index":%d}`, wi)
	}
	legs := make([]string, len(legDurations))
	for i, d := range legDurations {
		legs[i] = fmt.Sprintf(`{"duration":%f}`, d)
	}
	return fmt.Sprintf(`{"code":%q,"waypoints":[%s],"trips":[{"distance":%f,"legs":[%s]}]}`,
		code, strings.Join(wps, ","), distance, strings.Join(legs, ","))
}

func TestOptimizeWithOrigin(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		// Visit order: origin, C, B, A.
		fmt.Fprint(w, osrmBody("Ok", []int{0, 3, 2, 1}, []float64{100, 200, 300}, 5000))
	}))
	defer srv.Close()

	oracle := NewHTTPOracle(srv.URL, time.Second)
	origin := &Waypoint{Name: "Depot", Lat: -1.30, Lng: 36.80}
	stops := []Waypoint{
		{Name: "A", Lat: -1.28, Lng: 36.82},
		{Name: "B", Lat: -1.27, Lng: 36.83},
		{Name: "C", Lat: -1.26, Lng: 36.84},
	}

	route, err := oracle.Optimize(context.Background(), origin, stops)
	if err != nil {
		t.Fatalf("Optimize error: %v", err)
	}

	if !strings.HasPrefix(gotPath, "/trip/v1/driving/") {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.Contains(gotQuery, "source=first") || !strings.Contains(gotQuery, "roundtrip=false") {
		t.Errorf("query = %q", gotQuery)
	}
	// Coordinates go out lng,lat with the origin first.
	if !strings.HasPrefix(strings.TrimPrefix(gotPath, "/trip/v1/driving/"), "36.800000,-1.300000;") {
		t.Errorf("origin not first in %q", gotPath)
	}

	wantOrder := []int{2, 1, 0}
	wantLegs := []float64{100, 200, 300}
	for i := range wantOrder {
		if route.Order[i] != wantOrder[i] {
			t.Errorf("Order = %v, want %v", route.Order, wantOrder)
			break
		}
		if route.LegSeconds[i] != wantLegs[i] {
			t.Errorf("LegSeconds = %v, want %v", route.LegSeconds, wantLegs)
			break
		}
	}
	if route.DistanceKM != 5.0 {
		t.Errorf("DistanceKM = %f, want 5", route.DistanceKM)
	}
}

func TestOptimizeWithoutOriginFirstLegIsZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Visit order: stop 1 then stop 0.
		fmt.Fprint(w, osrmBody("Ok", []int{1, 0}, []float64{240}, 2000))
	}))
	defer srv.Close()

	oracle := NewHTTPOracle(srv.URL, time.Second)
	stops := []Waypoint{
		{Name: "A", Lat: -1.28, Lng: 36.82},
		{Name: "B", Lat: -1.27, Lng: 36.83},
	}

	route, err := oracle.Optimize(context.Background(), nil, stops)
	if err != nil {
		t.Fatalf("Optimize error: %v", err)
	}
	if len(route.Order) != 2 || route.Order[0] != 1 || route.Order[1] != 0 {
		t.Errorf("Order = %v, want [1 0]", route.Order)
	}
	if route.LegSeconds[0] != 0 || route.LegSeconds[1] != 240 {
		t.Errorf("LegSeconds = %v, want [0 240]", route.LegSeconds)
	}
}

func TestOptimizeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	oracle := NewHTTPOracle(srv.URL, time.Second)
	if _, err := oracle.Optimize(context.Background(), nil, []Waypoint{{Lat: 1, Lng: 1}}); err == nil {
		t.Fatalf("expected error on 502")
	}
}

func TestOptimizeRejectsNonOkCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"NoTrips","waypoints":[],"trips":[]}`)
	}))
	defer srv.Close()

	oracle := NewHTTPOracle(srv.URL, time.Second)
	if _, err := oracle.Optimize(context.Background(), nil, []Waypoint{{Lat: 1, Lng: 1}}); err == nil {
		t.Fatalf("expected error on non-Ok code")
	}
}

func TestOptimizeHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	oracle := NewHTTPOracle(srv.URL, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := oracle.Optimize(ctx, nil, []Waypoint{{Lat: 1, Lng: 1}}); err == nil {
		t.Fatalf("expected context deadline error")
	}
}

func TestHaversineKM(t *testing.T) {
	// One degree of latitude is about 111 km.
	d := HaversineKM(0, 0, 1, 0)
	if math.Abs(d-111.19) > 0.5 {
		t.Errorf("HaversineKM = %f, want ~111.19", d)
	}
	if HaversineKM(-1.28, 36.82, -1.28, 36.82) != 0 {
		t.Errorf("identical points must be distance 0")
	}
}
