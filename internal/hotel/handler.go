// Package hotel serves the mock booking routes: search, prebook, book,
// cancel, edit and booking lookup over an in-memory catalog.
package hotel

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/leslieo2/hotel-booking-mock/internal/binding"
	"github.com/leslieo2/hotel-booking-mock/internal/router"
)

type SearchRequest struct {
	City     string  `json:"city" validate:"required,max=100"`
	CheckIn  string  `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string  `json:"check_out" validate:"required,datetime=2006-01-02"`
	Guests   int     `json:"guests" validate:"required,min=1,max=20"`
	Rooms    int     `json:"rooms,omitempty" validate:"omitempty,min=1,max=10"`
	MinStars int     `json:"min_stars,omitempty" validate:"omitempty,min=1,max=5"`
	MaxPrice float64 `json:"max_price,omitempty" validate:"omitempty,gt=0"`
}

func (r SearchRequest) roomCount() int {
	if r.Rooms < 1 {
		return 1
	}
	return r.Rooms
}

type PrebookRequest struct {
	HotelID  string `json:"hotel_id" validate:"required"`
	RoomID   string `json:"room_id" validate:"required"`
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Guests   int    `json:"guests" validate:"required,min=1,max=20"`
	Rooms    int    `json:"rooms,omitempty" validate:"omitempty,min=1,max=10"`
}

func (r PrebookRequest) roomCount() int {
	if r.Rooms < 1 {
		return 1
	}
	return r.Rooms
}

type BookRequest struct {
	PrebookID       string `json:"prebook_id" validate:"required"`
	Guest           Guest  `json:"guest"`
	SpecialRequests string `json:"special_requests,omitempty" validate:"max=500"`
}

type CancelRequest struct {
	BookingID string `json:"booking_id" validate:"required"`
	Reason    string `json:"reason,omitempty" validate:"max=500"`
}

// GuestUpdate changes only the fields that are set
type GuestUpdate struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

type EditRequest struct {
	BookingID       string       `json:"booking_id" validate:"required"`
	Guest           *GuestUpdate `json:"guest,omitempty"`
	SpecialRequests *string      `json:"special_requests,omitempty" validate:"omitempty,max=500"`
}

// Handler implements router.Group for /api/hotel
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r *router.Router) {
	r.Post("/search", h.search)
	r.Post("/prebook", h.prebook)
	r.Post("/book", h.book)
	r.Post("/cancel", h.cancel)
	r.Put("/edit", h.edit)
	r.Get("/bookings/{id}", h.getBooking)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) error {
	var req SearchRequest
	if err := binding.Bind(r, &req); err != nil {
		return err
	}
	result, err := h.service.Search(req)
	if err != nil {
		return err
	}
	return binding.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

func (h *Handler) prebook(w http.ResponseWriter, r *http.Request) error {
	var req PrebookRequest
	if err := binding.Bind(r, &req); err != nil {
		return err
	}
	p, err := h.service.Prebook(req)
	if err != nil {
		return err
	}
	h.logger.Debug("Prebook created",
		zap.String("prebook_id", p.ID),
		zap.String("hotel_id", p.HotelID),
		zap.String("room_id", p.RoomID),
	)
	return binding.JSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"prebook": p,
	})
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) error {
	var req BookRequest
	if err := binding.Bind(r, &req); err != nil {
		return err
	}
	b, err := h.service.Book(req)
	if err != nil {
		return err
	}
	h.logger.Info("Booking confirmed",
		zap.String("booking_id", b.ID),
		zap.String("confirmation_code", b.ConfirmationCode),
		zap.String("hotel_id", b.HotelID),
	)
	return binding.JSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"booking": b,
	})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) error {
	var req CancelRequest
	if err := binding.Bind(r, &req); err != nil {
		return err
	}
	b, err := h.service.Cancel(req)
	if err != nil {
		return err
	}
	h.logger.Info("Booking cancelled", zap.String("booking_id", b.ID))
	return binding.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"booking": b,
	})
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) error {
	var req EditRequest
	if err := binding.Bind(r, &req); err != nil {
		return err
	}
	b, err := h.service.Edit(req)
	if err != nil {
		return err
	}
	return binding.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"booking": b,
	})
}

func (h *Handler) getBooking(w http.ResponseWriter, r *http.Request) error {
	b, err := h.service.Booking(r.PathValue("id"))
	if err != nil {
		return err
	}
	return binding.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"booking": b,
	})
}
