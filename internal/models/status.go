package models

type TripStatus string

const (
	TripStatusDraft     TripStatus = "draft"     // Черновик, не виден пассажирам
	TripStatusPublished TripStatus = "published" // Опубликована, доступна для заявок
	TripStatusArchived  TripStatus = "archived"  // В архиве
	TripStatusActive    TripStatus = "active"    // Поездка началась
	TripStatusCompleted TripStatus = "completed" // Поездка завершена
)

var tripTransitions = map[TripStatus][]TripStatus{
	TripStatusDraft:     {TripStatusPublished, TripStatusArchived},
	TripStatusPublished: {TripStatusArchived, TripStatusActive},
	TripStatusActive:    {TripStatusCompleted, TripStatusArchived},
	TripStatusArchived:  {TripStatusDraft},
	TripStatusCompleted: nil,
}

// Valid сообщает, является ли статус известным значением
func (s TripStatus) Valid() bool {
	_, ok := tripTransitions[s]
	return ok
}

// CanTransitionTo проверяет допустимость перехода s -> next
func (s TripStatus) CanTransitionTo(next TripStatus) bool {
	for _, allowed := range tripTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"   // Ожидает решения оператора
	RequestStatusAccepted  RequestStatus = "accepted"  // Принята, места зарезервированы
	RequestStatusDeclined  RequestStatus = "declined"  // Отклонена
	RequestStatusCancelled RequestStatus = "cancelled" // Отменена
	RequestStatusCompleted RequestStatus = "completed" // Поездка состоялась
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:   {RequestStatusAccepted, RequestStatusDeclined, RequestStatusCancelled},
	RequestStatusAccepted:  {RequestStatusCompleted, RequestStatusCancelled},
	RequestStatusDeclined:  nil,
	RequestStatusCancelled: nil,
	RequestStatusCompleted: nil,
}

func (s RequestStatus) Valid() bool {
	_, ok := requestTransitions[s]
	return ok
}

func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type BookingStatus string

const (
	BookingStatusConfirmed  BookingStatus = "confirmed"   // Подтверждено
	BookingStatusInProgress BookingStatus = "in_progress" // Пассажир в пути
	BookingStatusCompleted  BookingStatus = "completed"   // Завершено
	BookingStatusCancelled  BookingStatus = "cancelled"   // Отменено
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted:  nil,
	BookingStatusCancelled:  nil,
}

func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
