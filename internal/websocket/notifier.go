package websocket

import (
	"rideshare-backend/internal/models"
)

// StatusNotifier рассылает изменения статусов участникам поездки:
// пассажиру, назначенному водителю и компании.
type StatusNotifier struct {
	manager *WebSocketManager
}

func NewStatusNotifier(manager *WebSocketManager) *StatusNotifier {
	return &StatusNotifier{manager: manager}
}

func (n *StatusNotifier) TripStatusChanged(trip models.Trip) {
	n.send(&WebSocketMessage{
		Type: TripStatusUpdateType,
		Payload: map[string]interface{}{
			"trip_id":         trip.ID,
			"status":          trip.Status,
			"seats_available": trip.SeatsAvailable(),
		},
	}, trip.DriverID, trip.CompanyID)
}

func (n *StatusNotifier) RequestStatusChanged(req models.Request, trip models.Trip) {
	n.send(&WebSocketMessage{
		Type: RequestStatusUpdateType,
		Payload: map[string]interface{}{
			"request_id":      req.ID,
			"trip_id":         req.TripID,
			"status":          req.Status,
			"seats":           req.Seats,
			"seats_available": trip.SeatsAvailable(),
		},
	}, req.RiderID, trip.DriverID, trip.CompanyID)
}

func (n *StatusNotifier) BookingStatusChanged(b models.Booking) {
	n.send(&WebSocketMessage{
		Type: BookingStatusUpdateType,
		Payload: map[string]interface{}{
			"booking_id": b.ID,
			"request_id": b.RequestID,
			"trip_id":    b.TripID,
			"status":     b.Status,
		},
	}, b.RiderID, b.Driver.DriverID, b.CompanyID)
}

func (n *StatusNotifier) send(message *WebSocketMessage, userIDs ...string) {
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		n.manager.BroadcastToUser(id, message)
	}
}
