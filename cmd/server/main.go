package main

import (
	"log"
	"net/http"

	"github.com/sirupsen/logrus"

	"bus_dispatch/internal/config"
	"bus_dispatch/internal/controllers"
	"bus_dispatch/internal/geo"
	"bus_dispatch/internal/logger"
	"bus_dispatch/internal/metrics"
	"bus_dispatch/internal/middleware"
	"bus_dispatch/internal/publisher"
	"bus_dispatch/internal/repositories"
	"bus_dispatch/internal/routes"
	"bus_dispatch/internal/services"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	env, err := config.LoadEnv()
	if err != nil {
		log.Fatal(err)
	}
	middleware.SetSecret(env.JWTSecret)

	// Connect to the database
	config.InitDB()

	collector := metrics.NewCollector()
	if env.MetricsAddr != "" {
		collector.Serve(env.MetricsAddr)
	}

	// Push is best effort; the engine runs without NATS.
	var pub services.Publisher
	natsPub, err := publisher.NewNATSPublisher(env.NATSURL, collector)
	if err != nil {
		logrus.WithError(err).Warn("nats unavailable, push delivery disabled")
		natsPub = nil
	} else {
		defer natsPub.Close()
		pub = natsPub
	}

	db := config.GetDB()
	scheduleRepo := repositories.ScheduleRepository{DB: db}
	tripRepo := repositories.TripRepository{DB: db}
	passengerRepo := repositories.PassengerRepository{DB: db}
	attendanceRepo := repositories.AttendanceRepository{DB: db}
	userRepo := repositories.UserRepository{DB: db}
	driverRepo := repositories.DriverRepository{DB: db}
	orgRepo := repositories.OrganizationRepository{DB: db}
	notificationRepo := repositories.NotificationRepository{DB: db}

	dispatcher := &services.Dispatcher{
		Notifications: notificationRepo,
		Users:         userRepo,
		Pub:           pub,
		Metrics:       collector,
	}
	tripSvc := &services.TripService{Trips: tripRepo}
	scheduleSvc := &services.ScheduleService{
		Schedules:  scheduleRepo,
		Trips:      tripRepo,
		Passengers: passengerRepo,
		Drivers:    driverRepo,
		Dispatcher: dispatcher,
	}
	attendanceSvc := &services.AttendanceService{
		Attendance: attendanceRepo,
		Passengers: passengerRepo,
		Trips:      tripSvc,
		Dispatcher: dispatcher,
	}
	planner := &services.StopPlanner{
		Passengers: passengerRepo,
		Orgs:       orgRepo,
		Oracle:     geo.NewHTTPOracle(env.OracleURL, env.OracleTimeout),
		Timeout:    env.OracleTimeout,
		Metrics:    collector,
	}

	controllers.Init(controllers.Deps{
		Schedules:  scheduleSvc,
		Trips:      tripSvc,
		Attendance: attendanceSvc,
		Planner:    planner,
		Dispatcher: dispatcher,
		Collector:  collector,
		Push:       natsPub,
	})

	// Setup Gin router
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	log.Println("🚀 Server running at " + env.HTTPAddr)
	log.Fatal(http.ListenAndServe(env.HTTPAddr, handler))
}
