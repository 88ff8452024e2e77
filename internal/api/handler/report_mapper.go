package handler

import (
	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

func toUserResponse(id *domain.Identity) userResponse {
	return userResponse{ID: id.ID, Name: id.Name, Email: id.Email, Role: id.Role}
}

func toSessionResponse(s *ports.Session) sessionResponse {
	return sessionResponse{Token: s.Token, User: toUserResponse(domain.IdentityOf(s.User))}
}

func toReportResponse(r domain.Report) reportResponse {
	return reportResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		Category:    r.Category,
		Location:    r.Location,
		Description: r.Description,
		Coordinates: r.Coordinates,
		PhotoURL:    r.PhotoURL,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toReportResponses(reports []domain.Report) []reportResponse {
	out := make([]reportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, toReportResponse(r))
	}
	return out
}

func toReportViewResponses(views []domain.ReportView) []reportResponse {
	out := make([]reportResponse, 0, len(views))
	for _, v := range views {
		resp := toReportResponse(v.Report)
		resp.AuthorName = v.AuthorName
		out = append(out, resp)
	}
	return out
}

func toSubmitResponse(r *ports.SubmitReportResult) submitReportResponse {
	return submitReportResponse{
		ReportID:       r.ReportID,
		PhotoURL:       r.PhotoURL,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
		AlreadyExisted: r.AlreadyExisted,
	}
}

func toStatsResponse(c domain.StatusCounts) statsResponse {
	return statsResponse{Total: c.Total, Pending: c.Pending, Proses: c.Proses, Selesai: c.Selesai}
}

func toPickedLocationResponse(l *domain.PickedLocation) *pickedLocationResponse {
	if l == nil {
		return nil
	}
	return &pickedLocationResponse{
		Lat:             l.Coordinates.Lat,
		Lng:             l.Coordinates.Lng,
		Address:         l.Address,
		AddressResolved: l.AddressResolved,
		Source:          string(l.Source),
		PickedAt:        l.PickedAt,
	}
}

func toDraftFormResponse(f *domain.DraftForm) *draftFormResponse {
	if f == nil {
		return nil
	}
	return &draftFormResponse{
		Category:    f.Category,
		Description: f.Description,
		Location:    f.Location,
		UpdatedAt:   f.UpdatedAt,
	}
}
