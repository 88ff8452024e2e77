package handler

import (
	"time"

	"github.com/laporpak/report-service/internal/core/domain"
)

// --- Request / Response types ---

// errorResponse documents the error envelope rendered by the HTTP error handler.
type errorResponse struct {
	Error  string   `json:"error" example:"invalid or missing fields: category"`
	Fields []string `json:"fields,omitempty"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role" example:"user"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type reportResponse struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	AuthorName  string              `json:"author_name,omitempty"`
	Category    string              `json:"category" example:"lingkungan"`
	Location    string              `json:"location"`
	Description string              `json:"description"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
	PhotoURL    string              `json:"photo_url"`
	Status      string              `json:"status" example:"pending"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type submitReportResponse struct {
	ReportID       string    `json:"report_id"`
	PhotoURL       string    `json:"photo_url"`
	Status         string    `json:"status" example:"pending"`
	CreatedAt      time.Time `json:"created_at"`
	AlreadyExisted bool      `json:"already_existed"`
}

type listReportsResponse struct {
	Reports []reportResponse `json:"reports"`
	Total   int64            `json:"total"`
	Page    int              `json:"page,omitempty"`
	Limit   int              `json:"limit,omitempty"`
}

type statsResponse struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
	Proses  int64 `json:"proses"`
	Selesai int64 `json:"selesai"`
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required" example:"proses"`
}

type draftFormRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type pickLocationRequest struct {
	Lat    *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng    *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	Source string   `json:"source" validate:"omitempty,oneof=device manual" example:"device"`
}

type pickedLocationResponse struct {
	Lat             float64   `json:"lat"`
	Lng             float64   `json:"lng"`
	Address         string    `json:"address"`
	AddressResolved bool      `json:"address_resolved"`
	Source          string    `json:"source"`
	PickedAt        time.Time `json:"picked_at"`
}

type draftFormResponse struct {
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type draftResponse struct {
	Form     *draftFormResponse      `json:"form"`
	Location *pickedLocationResponse `json:"location"`
}
