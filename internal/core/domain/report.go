package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReportStatus is the triage state of a report.
type ReportStatus string

const (
	StatusPending ReportStatus = "pending"
	StatusProses  ReportStatus = "proses"
	StatusSelesai ReportStatus = "selesai"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []ReportStatus{StatusPending, StatusProses, StatusSelesai}

// ParseStatus accepts exactly one of the three lifecycle values.
func ParseStatus(s string) (ReportStatus, error) {
	st := ReportStatus(strings.TrimSpace(s))
	if !st.Valid() {
		return "", &ValidationError{Fields: []string{"status"}}
	}
	return st, nil
}

func (s ReportStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProses, StatusSelesai:
		return true
	}
	return false
}

// CanTransitionTo reports whether an admin may move a report from s to next.
// Every valid status is reachable from every other one, including back to pending.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	return s.Valid() && next.Valid()
}

// Suggested categories shown by clients. The store accepts any non-empty text.
const (
	CategoryLingkungan = "lingkungan"
	CategoryFasilitas  = "fasilitas"
	CategoryKeamanan   = "keamanan"
	CategoryLainnya    = "lainnya"
)

var SuggestedCategories = []string{CategoryLingkungan, CategoryFasilitas, CategoryKeamanan, CategoryLainnya}

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// Report is a citizen complaint.
type Report struct {
	ID          string
	UserID      string
	Category    string
	Location    string
	Description string
	Coordinates *Coordinates
	PhotoURL    string
	Status      ReportStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewReport builds a pending report from user input. Text fields are trimmed and
// must be non-empty; coordinates are optional but must be in range when present.
func NewReport(userID, category, location, description, photoURL string, coords *Coordinates) (*Report, error) {
	r := &Report{
		UserID:      strings.TrimSpace(userID),
		Category:    strings.TrimSpace(category),
		Location:    strings.TrimSpace(location),
		Description: strings.TrimSpace(description),
		PhotoURL:    strings.TrimSpace(photoURL),
		Status:      StatusPending,
	}

	var missing []string
	if r.Category == "" {
		missing = append(missing, "category")
	}
	if r.Description == "" {
		missing = append(missing, "description")
	}
	if r.Location == "" {
		missing = append(missing, "location")
	}
	if coords != nil {
		if !coords.Valid() {
			missing = append(missing, "coordinates")
		} else {
			c := *coords
			r.Coordinates = &c
		}
	}
	if r.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	return r, nil
}

// ReportView is the read projection handed to dashboards.
// AuthorName is filled only by the admin listing.
type ReportView struct {
	Report
	AuthorName string
}

// AuthorNotFound labels reports whose owner no longer resolves.
const AuthorNotFound = "author not found"

// StatusCounts aggregates reports per status. Total is always the sum of the parts.
type StatusCounts struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
	Proses  int64 `json:"proses"`
	Selesai int64 `json:"selesai"`
}

// Add records n reports in status s; unknown statuses are ignored.
func (c *StatusCounts) Add(s ReportStatus, n int64) {
	switch s {
	case StatusPending:
		c.Pending += n
	case StatusProses:
		c.Proses += n
	case StatusSelesai:
		c.Selesai += n
	default:
		return
	}
	c.Total += n
}
