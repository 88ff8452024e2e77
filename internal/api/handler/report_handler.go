package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/laporpak/report-service/internal/api/metrics"
	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

// ReportHandler serves the citizen side of reports.
type ReportHandler struct {
	submitter ports.ReportSubmitter
	reader    ports.ReportReader
}

func NewReportHandler(submitter ports.ReportSubmitter, reader ports.ReportReader) *ReportHandler {
	return &ReportHandler{submitter: submitter, reader: reader}
}

// Submit files a new report from a multipart form.
//
// @Summary      Submit a report
// @Tags         reports
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string  false  "Idempotency key to prevent duplicate submissions"
// @Param        category         formData  string  true   "Report category"
// @Param        description      formData  string  true   "What happened"
// @Param        location         formData  string  false  "Address; defaults to the picked draft location"
// @Param        latitude         formData  number  false  "Latitude"
// @Param        longitude        formData  number  false  "Longitude"
// @Param        photo            formData  file    false  "Evidence photo"
// @Success      201  {object}  submitReportResponse
// @Success      200  {object}  submitReportResponse  "Replay of an earlier submission"
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/reports [post]
func (h *ReportHandler) Submit(c echo.Context) error {
	coords, err := formCoordinates(c.FormValue("latitude"), c.FormValue("longitude"))
	if err != nil {
		metrics.SubmissionFailuresTotal.WithLabelValues("validation").Inc()
		return err
	}

	photo, err := formPhoto(c)
	if err != nil {
		metrics.SubmissionFailuresTotal.WithLabelValues("media").Inc()
		return err
	}

	res, err := h.submitter.Submit(c.Request().Context(), ports.SubmitReportInput{
		Category:       c.FormValue("category"),
		Description:    c.FormValue("description"),
		Location:       c.FormValue("location"),
		Coordinates:    coords,
		Photo:          photo,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		metrics.SubmissionFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		return err
	}

	if res.AlreadyExisted {
		metrics.SubmissionReplaysTotal.Inc()
		return c.JSON(http.StatusOK, toSubmitResponse(res))
	}
	metrics.ReportsSubmittedTotal.WithLabelValues(strconv.FormatBool(res.PhotoURL != "")).Inc()
	if photo.Present() {
		metrics.PhotoUploadBytes.Observe(float64(photo.Size))
	}
	return c.JSON(http.StatusCreated, toSubmitResponse(res))
}

// ListMine returns the caller's reports, newest first.
//
// @Summary      List my reports
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listReportsResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/reports/mine [get]
func (h *ReportHandler) ListMine(c echo.Context) error {
	reports, err := h.reader.ListMine(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listReportsResponse{
		Reports: toReportResponses(reports),
		Total:   int64(len(reports)),
	})
}

// Get returns one report to its owner or to an admin.
//
// @Summary      Get a report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Report id"
// @Success      200  {object}  reportResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/reports/{id} [get]
func (h *ReportHandler) Get(c echo.Context) error {
	report, err := h.reader.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReportResponse(*report))
}

// formCoordinates parses the optional latitude/longitude pair. Both or neither
// must be given.
func formCoordinates(lat, lng string) (*domain.Coordinates, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" && lng == "" {
		return nil, nil
	}
	invalid := &domain.ValidationError{Fields: []string{"coordinates"}}
	if lat == "" || lng == "" {
		return nil, invalid
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, invalid
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, invalid
	}
	return &domain.Coordinates{Lat: la, Lng: ln}, nil
}

// formPhoto maps the optional "photo" part onto a PhotoInput.
func formPhoto(c echo.Context) (*ports.PhotoInput, error) {
	fh, err := c.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMedia, err)
	}
	return photoInput(fh), nil
}

func photoInput(fh *multipart.FileHeader) *ports.PhotoInput {
	return &ports.PhotoInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func failureReason(err error) string {
	var ve *domain.ValidationError
	var ue *domain.UploadError
	switch {
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &ue), errors.Is(err, domain.ErrNotConfigured):
		return "upload"
	case errors.Is(err, domain.ErrMedia):
		return "media"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrSubmissionBusy):
		return "in_flight"
	}
	return "other"
}
