package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SeatLedgerOperations - операции резервирования и освобождения мест
	SeatLedgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seat_ledger_operations_total",
			Help: "Количество операций с местами по типу и результату",
		},
		[]string{"operation", "result"},
	)

	// RequestTransitions - переходы заявок по целевому статусу
	RequestTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ride_request_transitions_total",
			Help: "Количество переходов заявок по статусам",
		},
		[]string{"status"},
	)

	// TripTransitions - переходы поездок по целевому статусу
	TripTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_transitions_total",
			Help: "Количество переходов поездок по статусам",
		},
		[]string{"status"},
	)
)

func trackLedger(operation string, err error) {
	result := "ok"
	if err != nil {
		result = string(codeOrInternal(err))
	}
	SeatLedgerOperations.WithLabelValues(operation, result).Inc()
}
