package domain

import "time"

// AddressUnavailable marks a picked coordinate whose reverse geocoding failed.
const AddressUnavailable = "address unavailable"

// LocationSource records how a coordinate was obtained.
type LocationSource string

const (
	SourceDevice LocationSource = "device"
	SourceManual LocationSource = "manual"
)

func (s LocationSource) Valid() bool {
	return s == SourceDevice || s == SourceManual
}

// PickedLocation is the single current location of a report draft.
type PickedLocation struct {
	Coordinates     Coordinates    `json:"coordinates"`
	Address         string         `json:"address"`
	AddressResolved bool           `json:"address_resolved"`
	Source          LocationSource `json:"source"`
	Seq             int64          `json:"seq"`
	PickedAt        time.Time      `json:"picked_at"`
}

// DraftForm is the text part of a report form kept between attempts.
type DraftForm struct {
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	UpdatedAt   time.Time `json:"updated_at"`
}
