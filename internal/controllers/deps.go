package controllers

import (
	"bus_dispatch/internal/metrics"
	"bus_dispatch/internal/publisher"
	"bus_dispatch/internal/services"
)

// Package-level service handles, wired once at startup from main.
var (
	scheduleSvc   *services.ScheduleService
	tripSvc       *services.TripService
	attendanceSvc *services.AttendanceService
	planner       *services.StopPlanner
	dispatcher    *services.Dispatcher
	collector     *metrics.Collector
	pushPub       *publisher.NATSPublisher // may be nil when NATS is down
)

type Deps struct {
	Schedules  *services.ScheduleService
	Trips      *services.TripService
	Attendance *services.AttendanceService
	Planner    *services.StopPlanner
	Dispatcher *services.Dispatcher
	Collector  *metrics.Collector
	Push       *publisher.NATSPublisher
}

func Init(d Deps) {
	scheduleSvc = d.Schedules
	tripSvc = d.Trips
	attendanceSvc = d.Attendance
	planner = d.Planner
	dispatcher = d.Dispatcher
	collector = d.Collector
	pushPub = d.Push
}
