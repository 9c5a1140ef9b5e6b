package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultPlace is used when a show is created without an explicit venue.
	DefaultPlace = "Divadlo Kámen"

	// DefaultTicketsCount is the initial inventory for a new show.
	DefaultTicketsCount = 100
)

type Show struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	Place        string    `json:"place"`
	ImageURL     *string   `json:"image,omitempty"`
	TicketsCount int64     `json:"tickets_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type Ticket struct {
	ID         uuid.UUID `json:"id"`
	ShowID     int64     `json:"show_id"`
	UserID     *int64    `json:"user_id,omitempty"`
	BuyerName  string    `json:"buyer_name"`
	BuyerEmail string    `json:"buyer_email"`
	BuyerPhone string    `json:"buyer_phone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TicketWithShow is a ticket enriched with the show it was bought for,
// as listed on a user's profile.
type TicketWithShow struct {
	Ticket
	ShowName string    `json:"show_name"`
	ShowDate time.Time `json:"show_date"`
}

type ShowWithTickets struct {
	Show
	Tickets []Ticket `json:"tickets"`
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the identity bound to an opaque bearer token.
type Session struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type GalleryImage struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"image"`
}

type SliderImage struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"image"`
}
