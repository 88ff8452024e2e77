package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/laporpak/report-service/internal/api/metrics"
	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

// DraftHandler exposes the caller's pending report form, its picked location
// and stateless reverse geocoding.
type DraftHandler struct {
	drafts ports.DraftService
}

func NewDraftHandler(drafts ports.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// Get returns the saved form and picked location; either may be null.
//
// @Summary      Get report draft
// @Tags         drafts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  draftResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/reports/draft [get]
func (h *DraftHandler) Get(c echo.Context) error {
	form, loc, err := h.drafts.Draft(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, draftResponse{
		Form:     toDraftFormResponse(form),
		Location: toPickedLocationResponse(loc),
	})
}

// SaveForm replaces the draft's text fields.
//
// @Summary      Save report draft fields
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      draftFormRequest  true  "Fields as entered"
// @Success      200   {object}  draftFormResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/reports/draft [put]
func (h *DraftHandler) SaveForm(c echo.Context) error {
	var req draftFormRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	form, err := h.drafts.SaveForm(c.Request().Context(), domain.DraftForm{
		Category:    req.Category,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDraftFormResponse(form))
}

// PickLocation sets the draft's single current location.
//
// @Summary      Pick draft location
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      pickLocationRequest  true  "Coordinate and how it was obtained"
// @Success      200   {object}  pickedLocationResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/reports/draft/location [put]
func (h *DraftHandler) PickLocation(c echo.Context) error {
	var req pickLocationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Lat == nil || req.Lng == nil {
		return &domain.ValidationError{Fields: []string{"coordinates"}}
	}

	source := domain.LocationSource(req.Source)
	if source == "" {
		source = domain.SourceManual
	}

	loc, err := h.drafts.PickLocation(c.Request().Context(), domain.Coordinates{Lat: *req.Lat, Lng: *req.Lng}, source)
	if err != nil {
		return err
	}
	metrics.LocationPicksTotal.WithLabelValues(string(loc.Source), strconv.FormatBool(loc.AddressResolved)).Inc()
	return c.JSON(http.StatusOK, toPickedLocationResponse(loc))
}

// Discard clears the draft.
//
// @Summary      Discard report draft
// @Tags         drafts
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /v1/reports/draft [delete]
func (h *DraftHandler) Discard(c echo.Context) error {
	if err := h.drafts.Discard(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Reverse resolves a coordinate to an address without touching the draft.
//
// @Summary      Reverse geocode
// @Tags         geo
// @Produce      json
// @Security     BearerAuth
// @Param        lat  query     number  true  "Latitude"
// @Param        lng  query     number  true  "Longitude"
// @Success      200  {object}  pickedLocationResponse
// @Failure      401  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/geo/reverse [get]
func (h *DraftHandler) Reverse(c echo.Context) error {
	coords, err := formCoordinates(c.QueryParam("lat"), c.QueryParam("lng"))
	if err != nil {
		return err
	}
	if coords == nil {
		return &domain.ValidationError{Fields: []string{"coordinates"}}
	}

	loc, err := h.drafts.ReverseGeocode(c.Request().Context(), *coords)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPickedLocationResponse(loc))
}
