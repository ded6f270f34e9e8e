package shipment

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/hazriqpedia/waybill/internal/logging"
)

// StatusRescheduled is written to a confirmation record by a successful ConfirmReschedule.
const StatusRescheduled = "Rescheduled"

// Option configures a Service.
type Option func(*Service)

// WithPostalValidation requires ConfirmReschedule's postal code to match the record on file.
func WithPostalValidation(enabled bool) Option {
	return func(s *Service) {
		s.validatePostal = enabled
	}
}

// WithLogger sets the logger used to record every lookup.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service is the mock shipment backend. It is safe for concurrent use.
type Service struct {
	mu             sync.RWMutex
	shipments      map[string]Record
	allowed        map[string]bool
	dates          map[string][]string
	confirmations  map[string]Confirmation
	validatePostal bool
	logger         *slog.Logger
}

// NewService creates a service over a copy of seed.
func NewService(seed Seed, opts ...Option) *Service {
	s := &Service{
		shipments:     make(map[string]Record, len(seed.Shipments)),
		allowed:       make(map[string]bool, len(seed.RescheduleAllowed)),
		dates:         make(map[string][]string, len(seed.RescheduleDates)),
		confirmations: make(map[string]Confirmation, len(seed.Confirmations)),
		logger:        logging.NewNop(),
	}
	for id, r := range seed.Shipments {
		s.shipments[Normalize(id)] = r
	}
	for id, ok := range seed.RescheduleAllowed {
		s.allowed[Normalize(id)] = ok
	}
	for id, d := range seed.RescheduleDates {
		s.dates[Normalize(id)] = slices.Clone(d)
	}
	for id, c := range seed.Confirmations {
		s.confirmations[Normalize(id)] = c
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Normalize trims and upper-cases a tracking number.
func Normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func notFound(id string) string {
	return fmt.Sprintf("I'm sorry, tracking number '%s' not found.", id)
}

const (
	msgAllowed    = "Yes, you can reschedule this shipment. Please provide the new date (YYYY-MM-DD) and destination postal code."
	msgNotAllowed = "I'm sorry, rescheduling is not allowed for this shipment."
	msgNoDates    = "I'm sorry, rescheduling is not allowed for this shipment, so no dates can be provided."
	msgPostal     = "Postal code verification failed."
)

// known reports whether id appears in any table. Callers hold the lock.
func (s *Service) known(id string) bool {
	if _, ok := s.shipments[id]; ok {
		return true
	}
	_, ok := s.allowed[id]
	return ok
}

// Track reports the status and location of a shipment.
func (s *Service) Track(trackingNumber string) string {
	id := Normalize(trackingNumber)
	s.mu.RLock()
	r, ok := s.shipments[id]
	s.mu.RUnlock()

	result := notFound(id)
	if ok {
		result = fmt.Sprintf("Your shipment %s is currently '%s' in '%s'.", id, r.Status, r.Location)
	}
	s.logger.Info("track shipment", "tracking_number", id, "result", result)
	return result
}

// CheckRescheduleAvailability reports whether a shipment may be rescheduled.
func (s *Service) CheckRescheduleAvailability(trackingNumber string) string {
	id := Normalize(trackingNumber)
	s.mu.RLock()
	allowed, ok := s.allowed[id]
	s.mu.RUnlock()

	var result string
	switch {
	case !ok:
		result = notFound(id)
	case allowed:
		result = msgAllowed
	default:
		result = msgNotAllowed
	}
	s.logger.Info("check reschedule availability", "tracking_number", id, "result", result)
	return result
}

// RescheduleDates lists the dates offered for a shipment.
func (s *Service) RescheduleDates(trackingNumber string) string {
	id := Normalize(trackingNumber)
	s.mu.RLock()
	allowed, ok := s.allowed[id]
	dates := s.dates[id]
	s.mu.RUnlock()

	var result string
	switch {
	case !ok:
		result = notFound(id)
	case !allowed:
		result = msgNoDates
	case len(dates) == 0:
		result = fmt.Sprintf("I'm sorry, there are no rescheduling dates available for shipment %s right now.", id)
	default:
		result = fmt.Sprintf("Available rescheduling dates for shipment %s are: %s.", id, strings.Join(dates, ", "))
	}
	s.logger.Info("get reschedule dates", "tracking_number", id, "result", result)
	return result
}

// ConfirmReschedule moves an eligible shipment to one of its offered dates.
// It is the only operation that mutates the service.
func (s *Service) ConfirmReschedule(trackingNumber, newDate, postalCode string) string {
	id := Normalize(trackingNumber)
	date := strings.TrimSpace(newDate)
	postal := strings.TrimSpace(postalCode)

	s.mu.Lock()
	result := s.confirmLocked(id, date, postal)
	s.mu.Unlock()

	s.logger.Info("confirm reschedule",
		"tracking_number", id,
		"new_date", date,
		"postal_code", postal,
		"result", result,
	)
	return result
}

func (s *Service) confirmLocked(id, date, postal string) string {
	if !s.known(id) {
		return notFound(id)
	}
	if !s.allowed[id] {
		return msgNotAllowed
	}
	if s.validatePostal {
		if r, ok := s.shipments[id]; !ok || r.PostalCode != postal {
			return msgPostal
		}
	}
	if !slices.Contains(s.dates[id], date) {
		return fmt.Sprintf("I'm sorry, the requested date '%s' is not available or suitable for rescheduling shipment %s. Please try get_reschedule_dates to see available options.", date, id)
	}

	c := s.confirmations[id]
	c.NewDate = date
	c.Status = StatusRescheduled
	s.confirmations[id] = c

	return fmt.Sprintf("Okay, I've rescheduled your shipment %s to %s for delivery to postal code %s.", id, date, postal)
}

// Confirmation returns a snapshot of the confirmation record of a shipment.
func (s *Service) Confirmation(trackingNumber string) (Confirmation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.confirmations[Normalize(trackingNumber)]
	return c, ok
}

// TrackingNumbers returns every tracking number known to the service, sorted.
func (s *Service) TrackingNumbers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.shipments))
	for id := range s.shipments {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
