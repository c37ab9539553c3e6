package db

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"rideshare-backend/internal/models"
)

// MemoryStore хранит данные в памяти процесса. Используется в тестах и при STORAGE=memory.
type MemoryStore struct {
	mu               sync.RWMutex
	trips            map[string]models.Trip
	requests         map[string]models.Request
	bookings         map[string]models.Booking
	bookingByRequest map[string]string
	vehicles         map[string]models.Vehicle
	users            map[string]models.User

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trips:            make(map[string]models.Trip),
		requests:         make(map[string]models.Request),
		bookings:         make(map[string]models.Booking),
		bookingByRequest: make(map[string]string),
		vehicles:         make(map[string]models.Vehicle),
		users:            make(map[string]models.User),
		locks:            make(map[string]*sync.Mutex),
	}
}

// tripLock возвращает мьютекс конкретной поездки
func (s *MemoryStore) tripLock(tripID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[tripID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[tripID] = l
	}
	return l
}

func (s *MemoryStore) WithTrip(ctx context.Context, tripID string, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l := s.tripLock(tripID)
	l.Lock()
	defer l.Unlock()

	s.mu.RLock()
	trip, ok := s.trips[tripID]
	s.mu.RUnlock()
	if !ok {
		return models.NotFound("поездка", tripID)
	}

	tx := &memoryTx{
		store:    s,
		trip:     trip.Clone(),
		requests: make(map[string]models.Request),
		bookings: make(map[string]models.Booking),
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

func (s *MemoryStore) CreateTrip(ctx context.Context, trip models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trips[trip.ID]; exists {
		return fmt.Errorf("поездка %s уже существует", trip.ID)
	}
	s.trips[trip.ID] = trip.Clone()
	return nil
}

func (s *MemoryStore) GetTrip(ctx context.Context, id string) (models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trip, ok := s.trips[id]
	if !ok {
		return models.Trip{}, models.NotFound("поездка", id)
	}
	return trip.Clone(), nil
}

func (s *MemoryStore) ListTrips(ctx context.Context, q TripQuery) ([]models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Trip{}
	for _, t := range s.trips {
		if q.matches(t) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetRequest(ctx context.Context, id string) (models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return models.Request{}, models.NotFound("заявка", id)
	}
	return req, nil
}

func (s *MemoryStore) ListRequests(ctx context.Context, q RequestQuery) ([]models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Request{}
	for _, r := range s.requests {
		if q.matches(r) {
			out = append(out, r)
		}
	}
	sortRequests(out)
	return out, nil
}

func (s *MemoryStore) GetBooking(ctx context.Context, id string) (models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, models.NotFound("бронирование", id)
	}
	return b.Clone(), nil
}

func (s *MemoryStore) ListBookings(ctx context.Context, q BookingQuery) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Booking{}
	for _, b := range s.bookings {
		if q.matches(b) {
			out = append(out, b.Clone())
		}
	}
	sortBookings(out)
	return out, nil
}

func (s *MemoryStore) SaveVehicle(ctx context.Context, v models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, other := range s.vehicles {
		if id != v.ID && other.Plate == v.Plate {
			return models.NewError(models.CodeValidation, "автомобиль с номером %s уже зарегистрирован", v.Plate)
		}
	}
	s.vehicles[v.ID] = v
	return nil
}

func (s *MemoryStore) GetVehicle(ctx context.Context, id string) (models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vehicle(id)
}

func (s *MemoryStore) vehicle(id string) (models.Vehicle, error) {
	v, ok := s.vehicles[id]
	if !ok {
		return models.Vehicle{}, models.NotFound("автомобиль", id)
	}
	return v, nil
}

func (s *MemoryStore) ListVehicles(ctx context.Context, companyID string) ([]models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Vehicle{}
	for _, v := range s.vehicles {
		if companyID == "" || v.CompanyID == companyID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Plate < out[j].Plate })
	return out, nil
}

func (s *MemoryStore) SaveUser(ctx context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user(id)
}

func (s *MemoryStore) user(id string) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, models.NotFound("пользователь", id)
	}
	return u, nil
}

// memoryTx накапливает записи и применяет их в commit
type memoryTx struct {
	store     *MemoryStore
	trip      models.Trip
	tripDirty bool
	requests  map[string]models.Request
	bookings  map[string]models.Booking
}

func (tx *memoryTx) Trip() models.Trip {
	return tx.trip.Clone()
}

func (tx *memoryTx) SaveTrip(trip models.Trip) error {
	if trip.ID != tx.trip.ID {
		return fmt.Errorf("транзакция открыта для поездки %s, а не %s", tx.trip.ID, trip.ID)
	}
	tx.trip = trip.Clone()
	tx.tripDirty = true
	return nil
}

func (tx *memoryTx) GetRequest(id string) (models.Request, error) {
	if req, ok := tx.requests[id]; ok {
		return req, nil
	}
	tx.store.mu.RLock()
	req, ok := tx.store.requests[id]
	tx.store.mu.RUnlock()
	if !ok || req.TripID != tx.trip.ID {
		return models.Request{}, models.NotFound("заявка", id)
	}
	return req, nil
}

func (tx *memoryTx) SaveRequest(req models.Request) error {
	if req.TripID != tx.trip.ID {
		return fmt.Errorf("заявка %s относится к поездке %s, а не %s", req.ID, req.TripID, tx.trip.ID)
	}
	tx.requests[req.ID] = req
	return nil
}

func (tx *memoryTx) Requests() ([]models.Request, error) {
	merged := make(map[string]models.Request)
	tx.store.mu.RLock()
	for id, r := range tx.store.requests {
		if r.TripID == tx.trip.ID {
			merged[id] = r
		}
	}
	tx.store.mu.RUnlock()
	for id, r := range tx.requests {
		merged[id] = r
	}

	out := make([]models.Request, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sortRequests(out)
	return out, nil
}

func (tx *memoryTx) BookingByRequest(requestID string) (models.Booking, error) {
	for _, b := range tx.bookings {
		if b.RequestID == requestID {
			return b.Clone(), nil
		}
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	if id, ok := tx.store.bookingByRequest[requestID]; ok {
		return tx.store.bookings[id].Clone(), nil
	}
	return models.Booking{}, models.NotFound("бронирование для заявки", requestID)
}

func (tx *memoryTx) SaveBooking(b models.Booking) error {
	if b.TripID != tx.trip.ID {
		return fmt.Errorf("бронирование %s относится к поездке %s, а не %s", b.ID, b.TripID, tx.trip.ID)
	}
	tx.bookings[b.ID] = b.Clone()
	return nil
}

func (tx *memoryTx) Bookings() ([]models.Booking, error) {
	merged := make(map[string]models.Booking)
	tx.store.mu.RLock()
	for id, b := range tx.store.bookings {
		if b.TripID == tx.trip.ID {
			merged[id] = b.Clone()
		}
	}
	tx.store.mu.RUnlock()
	for id, b := range tx.bookings {
		merged[id] = b.Clone()
	}

	out := make([]models.Booking, 0, len(merged))
	for _, b := range merged {
		out = append(out, b)
	}
	sortBookings(out)
	return out, nil
}

func (tx *memoryTx) GetVehicle(id string) (models.Vehicle, error) {
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	return tx.store.vehicle(id)
}

func (tx *memoryTx) GetUser(id string) (models.User, error) {
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	return tx.store.user(id)
}

func (tx *memoryTx) commit() error {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range tx.bookings {
		if id, ok := s.bookingByRequest[b.RequestID]; ok && id != b.ID {
			return fmt.Errorf("для заявки %s уже создано бронирование %s", b.RequestID, id)
		}
	}

	if tx.tripDirty {
		s.trips[tx.trip.ID] = tx.trip
	}
	for id, r := range tx.requests {
		s.requests[id] = r
	}
	for id, b := range tx.bookings {
		s.bookings[id] = b
		s.bookingByRequest[b.RequestID] = id
	}
	return nil
}

func sortRequests(list []models.Request) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

func sortBookings(list []models.Booking) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
