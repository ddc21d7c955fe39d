package hotel

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leslieo2/hotel-booking-mock/internal/apierror"
	"github.com/leslieo2/hotel-booking-mock/internal/config"
	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

// EventRecorder counts booking operations by action and outcome
type EventRecorder interface {
	RecordBookingEvent(action, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordBookingEvent(string, string) {}

// Service implements the mock booking flow on top of the catalog and store
type Service struct {
	catalog  *CatalogStore
	store    *Store
	cfg      config.HotelConfig
	recorder EventRecorder
	now      func() time.Time
}

// NewService creates a booking service. recorder may be nil.
func NewService(catalog *CatalogStore, cfg config.HotelConfig, recorder EventRecorder) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		catalog:  catalog,
		store:    NewStore(cfg.PrebookTTL),
		cfg:      cfg,
		recorder: recorder,
		now:      time.Now,
	}
}

// Stay is a validated date range
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
	Nights   int
}

// parseStay checks the date range: check-out after check-in, check-in not
// before today (UTC) and no longer than the configured maximum
func (s *Service) parseStay(checkIn, checkOut string) (Stay, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return Stay{}, apierror.Validation(map[string]string{"check_in": "must be a date in the format YYYY-MM-DD"})
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return Stay{}, apierror.Validation(map[string]string{"check_out": "must be a date in the format YYYY-MM-DD"})
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	if in.Before(today) {
		return Stay{}, apierror.Validation(map[string]string{"check_in": "must not be in the past"})
	}
	if !out.After(in) {
		return Stay{}, apierror.Validation(map[string]string{"check_out": "must be after check_in"})
	}

	nights := int(out.Sub(in).Hours() / 24)
	if s.cfg.MaxNights > 0 && nights > s.cfg.MaxNights {
		return Stay{}, apierror.Validation(map[string]string{
			"check_out": fmt.Sprintf("stay must not exceed %d nights", s.cfg.MaxNights),
		})
	}
	return Stay{CheckIn: in, CheckOut: out, Nights: nights}, nil
}

// RoomOffer is a room priced for a stay
type RoomOffer struct {
	Room
	Nights     int     `json:"nights"`
	Rooms      int     `json:"rooms"`
	TotalPrice float64 `json:"total_price"`
}

// HotelOffer is a hotel with the rooms that fit a search
type HotelOffer struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	City      string      `json:"city"`
	Country   string      `json:"country"`
	Stars     int         `json:"stars"`
	Address   string      `json:"address"`
	Amenities []string    `json:"amenities"`
	FromPrice float64     `json:"from_price"`
	Currency  string      `json:"currency"`
	Rooms     []RoomOffer `json:"rooms"`
}

// SearchResult answers a search
type SearchResult struct {
	SearchID string       `json:"search_id"`
	City     string       `json:"city"`
	CheckIn  string       `json:"check_in"`
	CheckOut string       `json:"check_out"`
	Nights   int          `json:"nights"`
	Guests   int          `json:"guests"`
	Rooms    int          `json:"rooms"`
	Count    int          `json:"count"`
	Hotels   []HotelOffer `json:"hotels"`
}

// Search lists the hotels in req.City with rooms that can hold the guests
func (s *Service) Search(req SearchRequest) (*SearchResult, error) {
	stay, err := s.parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		s.recorder.RecordBookingEvent("search", "invalid")
		return nil, err
	}
	rooms := req.roomCount()

	result := &SearchResult{
		SearchID: uuid.NewString(),
		City:     req.City,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Nights:   stay.Nights,
		Guests:   req.Guests,
		Rooms:    rooms,
		Hotels:   []HotelOffer{},
	}

	for _, h := range s.catalog.Current().InCity(req.City) {
		if req.MinStars > 0 && h.Stars < req.MinStars {
			continue
		}

		offer := HotelOffer{
			ID:        h.ID,
			Name:      h.Name,
			City:      h.City,
			Country:   h.Country,
			Stars:     h.Stars,
			Address:   h.Address,
			Amenities: h.Amenities,
		}
		for _, room := range h.Rooms {
			if !fits(room, req.Guests, rooms) {
				continue
			}
			if req.MaxPrice > 0 && room.PricePerNight > req.MaxPrice {
				continue
			}
			total := price(room, stay.Nights, rooms)
			offer.Rooms = append(offer.Rooms, RoomOffer{Room: room, Nights: stay.Nights, Rooms: rooms, TotalPrice: total})
			if offer.FromPrice == 0 || total < offer.FromPrice {
				offer.FromPrice = total
				offer.Currency = room.Currency
			}
		}
		if len(offer.Rooms) > 0 {
			result.Hotels = append(result.Hotels, offer)
		}
	}
	result.Count = len(result.Hotels)

	s.recorder.RecordBookingEvent("search", "ok")
	return result, nil
}

// Prebook prices and holds a room
func (s *Service) Prebook(req PrebookRequest) (Prebook, error) {
	stay, err := s.parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		s.recorder.RecordBookingEvent("prebook", "invalid")
		return Prebook{}, err
	}
	rooms := req.roomCount()

	h, room, ok := s.catalog.Current().Room(req.HotelID, req.RoomID)
	if h == nil {
		s.recorder.RecordBookingEvent("prebook", "not_found")
		return Prebook{}, notFound("Hotel not found: " + req.HotelID)
	}
	if !ok {
		s.recorder.RecordBookingEvent("prebook", "not_found")
		return Prebook{}, notFound("Room not found: " + req.RoomID)
	}
	if !fits(*room, req.Guests, rooms) {
		s.recorder.RecordBookingEvent("prebook", "invalid")
		return Prebook{}, apierror.Validation(map[string]string{
			"guests": fmt.Sprintf("%s holds at most %d guests per room", room.Name, room.Capacity),
		})
	}

	now := s.now().UTC()
	p := &Prebook{
		ID:         uuid.NewString(),
		HotelID:    h.ID,
		HotelName:  h.Name,
		RoomID:     room.ID,
		RoomName:   room.Name,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Nights:     stay.Nights,
		Guests:     req.Guests,
		Rooms:      rooms,
		TotalPrice: price(*room, stay.Nights, rooms),
		Currency:   room.Currency,
		Refundable: room.Refundable,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.PrebookTTL),
	}

	s.store.mu.Lock()
	s.store.putPrebook(p)
	s.store.mu.Unlock()

	s.recorder.RecordBookingEvent("prebook", "ok")
	return *p, nil
}

// Book confirms a prebook. A prebook can be booked once, and only before
// it expires.
func (s *Service) Book(req BookRequest) (Booking, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	p, ok := s.store.prebook(req.PrebookID)
	if !ok {
		s.recorder.RecordBookingEvent("book", "not_found")
		return Booking{}, notFound("Prebook not found: " + req.PrebookID)
	}
	now := s.now().UTC()
	if !now.Before(p.ExpiresAt) {
		s.recorder.RecordBookingEvent("book", "expired")
		return Booking{}, apierror.New(http.StatusGone, constants.ErrorCodeGone, "Prebook has expired, search and prebook again")
	}
	if p.BookingID != "" {
		s.recorder.RecordBookingEvent("book", "conflict")
		return Booking{}, apierror.Conflict("Prebook has already been booked as " + p.BookingID)
	}

	b := &Booking{
		ID:               uuid.NewString(),
		ConfirmationCode: confirmationCode(),
		PrebookID:        p.ID,
		HotelID:          p.HotelID,
		HotelName:        p.HotelName,
		RoomID:           p.RoomID,
		RoomName:         p.RoomName,
		CheckIn:          p.CheckIn,
		CheckOut:         p.CheckOut,
		Nights:           p.Nights,
		Guests:           p.Guests,
		Rooms:            p.Rooms,
		Guest:            req.Guest,
		SpecialRequests:  req.SpecialRequests,
		TotalPrice:       p.TotalPrice,
		Currency:         p.Currency,
		Refundable:       p.Refundable,
		Status:           StatusConfirmed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	p.BookingID = b.ID
	s.store.putBooking(b)

	s.recorder.RecordBookingEvent("book", "ok")
	return *b, nil
}

// Cancel cancels a confirmed booking
func (s *Service) Cancel(req CancelRequest) (Booking, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	b, ok := s.store.booking(req.BookingID)
	if !ok {
		s.recorder.RecordBookingEvent("cancel", "not_found")
		return Booking{}, notFound("Booking not found: " + req.BookingID)
	}
	if b.Status == StatusCancelled {
		s.recorder.RecordBookingEvent("cancel", "conflict")
		return Booking{}, apierror.Conflict("Booking is already cancelled")
	}

	now := s.now().UTC()
	b.Status = StatusCancelled
	b.CancelledAt = &now
	b.CancellationReason = req.Reason
	b.UpdatedAt = now

	s.recorder.RecordBookingEvent("cancel", "ok")
	return *b, nil
}

// Edit updates the guest details or special requests of a confirmed booking
func (s *Service) Edit(req EditRequest) (Booking, error) {
	if req.Guest == nil && req.SpecialRequests == nil {
		s.recorder.RecordBookingEvent("edit", "invalid")
		return Booking{}, apierror.BadRequest("Nothing to update: provide guest or special_requests")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	b, ok := s.store.booking(req.BookingID)
	if !ok {
		s.recorder.RecordBookingEvent("edit", "not_found")
		return Booking{}, notFound("Booking not found: " + req.BookingID)
	}
	if b.Status == StatusCancelled {
		s.recorder.RecordBookingEvent("edit", "conflict")
		return Booking{}, apierror.Conflict("Cancelled bookings cannot be edited")
	}

	if g := req.Guest; g != nil {
		if g.FirstName != nil {
			b.Guest.FirstName = *g.FirstName
		}
		if g.LastName != nil {
			b.Guest.LastName = *g.LastName
		}
		if g.Email != nil {
			b.Guest.Email = *g.Email
		}
		if g.Phone != nil {
			b.Guest.Phone = *g.Phone
		}
	}
	if req.SpecialRequests != nil {
		b.SpecialRequests = *req.SpecialRequests
	}
	b.UpdatedAt = s.now().UTC()

	s.recorder.RecordBookingEvent("edit", "ok")
	return *b, nil
}

// Booking looks up a booking by id
func (s *Service) Booking(id string) (Booking, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	b, ok := s.store.booking(id)
	if !ok {
		return Booking{}, notFound("Booking not found: " + id)
	}
	return *b, nil
}

// Ready reports whether a catalog is loaded, with its size
func (s *Service) Ready() (bool, int) {
	c := s.catalog.Current()
	if c == nil {
		return false, 0
	}
	return c.Len() > 0, c.Len()
}

// fits reports whether rooms of this type can hold guests
func fits(room Room, guests, rooms int) bool {
	return guests >= rooms && room.Capacity*rooms >= guests
}

func price(room Room, nights, rooms int) float64 {
	return math.Round(room.PricePerNight*float64(nights*rooms)*100) / 100
}

func notFound(message string) *apierror.Error {
	return apierror.New(http.StatusNotFound, constants.ErrorCodeNotFound, message)
}

// confirmationCode returns a short human friendly reference
func confirmationCode() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "HBM-" + id[:8]
}
