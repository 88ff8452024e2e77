package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/laporpak/report-service/internal/api/metrics"
	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

// AdminHandler serves the triage panel.
type AdminHandler struct {
	reader  ports.ReportReader
	triager ports.ReportTriager
}

func NewAdminHandler(reader ports.ReportReader, triager ports.ReportTriager) *AdminHandler {
	return &AdminHandler{reader: reader, triager: triager}
}

// List returns every report with its author name.
//
// @Summary      List all reports
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "pending, proses or selesai"
// @Param        category  query     string  false  "Exact category"
// @Param        page      query     int     false  "1-based page"
// @Param        limit     query     int     false  "Page size, 0 for all (max 100)"
// @Success      200  {object}  listReportsResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/admin/reports [get]
func (h *AdminHandler) List(c echo.Context) error {
	filter, err := listFilter(c)
	if err != nil {
		return err
	}

	views, total, err := h.reader.ListAll(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listReportsResponse{
		Reports: toReportViewResponses(views),
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
	})
}

// Stats returns report counts per status.
//
// @Summary      Report statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/reports/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	counts, err := h.reader.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStatsResponse(counts))
}

// ChangeStatus moves a report to a new triage status.
//
// @Summary      Change report status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Report id"
// @Param        body  body      changeStatusRequest  true  "New status"
// @Success      200  {object}  reportResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/admin/reports/{id}/status [patch]
func (h *AdminHandler) ChangeStatus(c echo.Context) error {
	var req changeStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	report, err := h.triager.ChangeStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	metrics.StatusChangesTotal.WithLabelValues(string(report.Status)).Inc()
	return c.JSON(http.StatusOK, toReportResponse(*report))
}

// Delete removes a report.
//
// @Summary      Delete a report
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "Report id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/reports/{id} [delete]
func (h *AdminHandler) Delete(c echo.Context) error {
	if err := h.triager.RemoveReport(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.ReportsDeletedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}

func listFilter(c echo.Context) (ports.ListReportsFilter, error) {
	filter := ports.ListReportsFilter{
		Status:   domain.ReportStatus(strings.TrimSpace(c.QueryParam("status"))),
		Category: strings.TrimSpace(c.QueryParam("category")),
	}

	var invalid []string
	if v := c.QueryParam("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			invalid = append(invalid, "page")
		}
		filter.Page = n
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			invalid = append(invalid, "limit")
		}
		filter.Limit = n
	}
	if len(invalid) > 0 {
		return ports.ListReportsFilter{}, &domain.ValidationError{Fields: invalid}
	}
	return filter, nil
}
