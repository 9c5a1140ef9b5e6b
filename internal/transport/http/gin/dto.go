package httpgin

import (
	"time"

	"github.com/mkadlec/theater-api/internal/domain"
)

type CreateShowRequest struct {
	Name         string  `json:"name" binding:"required,max=100"`
	Description  string  `json:"description"`
	Date         string  `json:"date" binding:"required"`
	Place        string  `json:"place" binding:"omitempty,max=100"`
	Image        *string `json:"image"`
	TicketsCount *int64  `json:"tickets_count" binding:"omitempty,gte=0"`
}

type UpdateShowRequest struct {
	Name         *string `json:"name" binding:"omitempty,max=100"`
	Description  *string `json:"description"`
	Date         *string `json:"date"`
	Place        *string `json:"place" binding:"omitempty,max=100"`
	Image        *string `json:"image"`
	TicketsCount *int64  `json:"tickets_count" binding:"omitempty,gte=0"`
}

type ReserveTicketRequest struct {
	ShowID     int64  `json:"show_id" binding:"required"`
	BuyerName  string `json:"buyer_name" binding:"required,max=100"`
	BuyerEmail string `json:"buyer_email" binding:"required,email,max=254"`
	BuyerPhone string `json:"buyer_phone" binding:"omitempty,max=15"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type RegisterResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ImageRequest struct {
	ImageURL string `json:"image" binding:"required,max=500"`
}

type ProfileResponse struct {
	User    domain.User             `json:"user"`
	Tickets []domain.TicketWithShow `json:"tickets"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
