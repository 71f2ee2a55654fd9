package controllers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"bus_dispatch/internal/config"
	"bus_dispatch/internal/middleware"
	"bus_dispatch/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type trackingEvent struct {
	tripID  uint
	payload []byte
}

// TripHub fans position events out to the websocket clients watching each
// trip. Rooms are keyed by trip ID; a room disappears with its last client.
type TripHub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*websocket.Conn]bool

	broadcast  chan trackingEvent
	register   chan subscription
	unregister chan subscription
}

type subscription struct {
	tripID uint
	conn   *websocket.Conn
}

func NewTripHub() *TripHub {
	h := &TripHub{
		rooms:      make(map[uint]map[*websocket.Conn]bool),
		broadcast:  make(chan trackingEvent, 64),
		register:   make(chan subscription),
		unregister: make(chan subscription),
	}
	go h.run()
	return h
}

func (h *TripHub) run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			if h.rooms[sub.tripID] == nil {
				h.rooms[sub.tripID] = make(map[*websocket.Conn]bool)
			}
			h.rooms[sub.tripID][sub.conn] = true
			h.mu.Unlock()
		case sub := <-h.unregister:
			h.mu.Lock()
			if room := h.rooms[sub.tripID]; room != nil {
				delete(room, sub.conn)
				if len(room) == 0 {
					delete(h.rooms, sub.tripID)
				}
			}
			h.mu.Unlock()
			sub.conn.Close()
		case event := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.rooms[event.tripID] {
				if err := conn.WriteMessage(websocket.TextMessage, event.payload); err != nil {
					logrus.WithError(err).Warn("tracking: dropping slow client")
					go func(c *websocket.Conn, tripID uint) {
						h.unregister <- subscription{tripID: tripID, conn: c}
					}(conn, event.tripID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish hands a position event to the watchers of a trip. Non-blocking;
// if the hub is saturated the event is dropped, the durable history already
// has it.
func (h *TripHub) Publish(tripID uint, payload []byte) {
	select {
	case h.broadcast <- trackingEvent{tripID: tripID, payload: payload}:
	default:
		logrus.WithField("trip_id", tripID).Warn("tracking: broadcast buffer full, event dropped")
	}
}

var trackingHub = NewTripHub()

// HandleTrackingWebSocket upgrades a tracking client. Browsers cannot set
// headers on websocket dials, so the JWT rides the ?token= query parameter.
// Guardians may only watch trips of a bus carrying one of their passengers.
func HandleTrackingWebSocket(c *gin.Context) {
	tID, ok := paramID(c, "id")
	if !ok {
		return
	}

	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter required"})
		return
	}
	claims, err := middleware.ValidateToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var trip models.Trip
	if err := config.DB.Where("id = ? AND organization_id = ?", tID, claims.OrgID).First(&trip).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}

	if claims.Role == "guardian" {
		var count int64
		config.DB.Model(&models.Passenger{}).
			Where("bus_id = ? AND guardian_id = ?", trip.BusID, claims.UserID).
			Count(&count)
		if count == 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "No passenger of yours rides this bus"})
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("tracking: websocket upgrade failed")
		return
	}

	trackingHub.register <- subscription{tripID: trip.ID, conn: conn}
	logrus.WithFields(logrus.Fields{
		"trip_id": trip.ID,
		"user_id": claims.UserID,
	}).Info("tracking client connected")

	// Reader loop only detects disconnects; trackers never send.
	go func() {
		defer func() {
			trackingHub.unregister <- subscription{tripID: trip.ID, conn: conn}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
