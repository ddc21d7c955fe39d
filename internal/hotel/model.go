package hotel

import "time"

// Booking states
const (
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// DateLayout is the wire format of stay dates
const DateLayout = "2006-01-02"

type Hotel struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	City      string   `json:"city" yaml:"city"`
	Country   string   `json:"country" yaml:"country"`
	Stars     int      `json:"stars" yaml:"stars"`
	Address   string   `json:"address" yaml:"address"`
	Amenities []string `json:"amenities" yaml:"amenities"`
	Rooms     []Room   `json:"rooms" yaml:"rooms"`
}

type Room struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Capacity      int     `json:"capacity" yaml:"capacity"`
	PricePerNight float64 `json:"price_per_night" yaml:"price_per_night"`
	Currency      string  `json:"currency" yaml:"currency"`
	Refundable    bool    `json:"refundable" yaml:"refundable"`
}

// Prebook holds a priced room for a short time before it is booked
type Prebook struct {
	ID         string    `json:"id"`
	HotelID    string    `json:"hotel_id"`
	HotelName  string    `json:"hotel_name"`
	RoomID     string    `json:"room_id"`
	RoomName   string    `json:"room_name"`
	CheckIn    string    `json:"check_in"`
	CheckOut   string    `json:"check_out"`
	Nights     int       `json:"nights"`
	Guests     int       `json:"guests"`
	Rooms      int       `json:"rooms"`
	TotalPrice float64   `json:"total_price"`
	Currency   string    `json:"currency"`
	Refundable bool      `json:"refundable"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	BookingID  string    `json:"booking_id,omitempty"`
}

type Guest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

type Booking struct {
	ID                 string     `json:"id"`
	ConfirmationCode   string     `json:"confirmation_code"`
	PrebookID          string     `json:"prebook_id"`
	HotelID            string     `json:"hotel_id"`
	HotelName          string     `json:"hotel_name"`
	RoomID             string     `json:"room_id"`
	RoomName           string     `json:"room_name"`
	CheckIn            string     `json:"check_in"`
	CheckOut           string     `json:"check_out"`
	Nights             int        `json:"nights"`
	Guests             int        `json:"guests"`
	Rooms              int        `json:"rooms"`
	Guest              Guest      `json:"guest"`
	SpecialRequests    string     `json:"special_requests,omitempty"`
	TotalPrice         float64    `json:"total_price"`
	Currency           string     `json:"currency"`
	Refundable         bool       `json:"refundable"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
}
