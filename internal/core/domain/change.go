package domain

import "time"

// ChangeKind names a mutation of the report collection.
type ChangeKind string

const (
	ChangeCreated       ChangeKind = "report.created"
	ChangeStatusChanged ChangeKind = "report.status_changed"
	ChangeDeleted       ChangeKind = "report.deleted"
)

// ReportChange tells listeners that report lists may have changed.
type ReportChange struct {
	Kind     ChangeKind
	ReportID string
	OwnerID  string
	Status   ReportStatus
	At       time.Time
}
