package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laporpak/report-service/internal/api/handler"
	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
	"github.com/laporpak/report-service/internal/infrastructure/session"
)

// tokenIdentities maps raw session tokens to identities.
type tokenIdentities map[string]*domain.Identity

func (t tokenIdentities) CurrentIdentity(ctx context.Context) (*domain.Identity, error) {
	return t[session.TokenFromContext(ctx)], nil
}

type draftsOnly struct {
	ports.DraftService
	calls int
}

func (d *draftsOnly) Draft(context.Context) (*domain.DraftForm, *domain.PickedLocation, error) {
	d.calls++
	return nil, nil, nil
}

type readerOnly struct {
	ports.ReportReader
	gotID string
}

func (r *readerOnly) Get(_ context.Context, id string) (*domain.Report, error) {
	r.gotID = id
	return &domain.Report{ID: id, Status: domain.StatusPending}, nil
}

// The router registers process-wide metrics, so a single instance serves every case.
func TestRouter(t *testing.T) {
	ids := tokenIdentities{
		"user-token":  {ID: "u1", Role: domain.RoleUser},
		"admin-token": {ID: "a1", Role: domain.RoleAdmin},
	}
	drafts := &draftsOnly{}
	reader := &readerOnly{}
	e := NewRouter(Deps{
		Identities: ids,
		Reader:     reader,
		Drafts:     drafts,
		Readiness:  map[string]handler.Pinger{"mongodb": func(context.Context) error { return nil }},
		Cookie:     handler.CookieConfig{Name: "laporpak_session", TTL: time.Hour},
		Logger:     zerolog.Nop(),
	})

	do := func(method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.AddCookie(&http.Cookie{Name: "laporpak_session", Value: token})
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("health is public", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(http.MethodGet, "/health", "").Code)
		assert.Equal(t, http.StatusOK, do(http.MethodGet, "/health/ready", "").Code)
	})

	t.Run("metrics exposed", func(t *testing.T) {
		rec := do(http.MethodGet, "/metrics", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "laporpak_http_requests_total")
	})

	t.Run("citizen routes need a session", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/reports/mine", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())

		assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/v1/reports/mine", "forged").Code)
	})

	t.Run("draft is not captured by the id route", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/reports/draft", "user-token")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, drafts.calls)
		assert.Empty(t, reader.gotID)

		require.Equal(t, http.StatusOK, do(http.MethodGet, "/v1/reports/r42", "user-token").Code)
		assert.Equal(t, "r42", reader.gotID)
	})

	t.Run("admin routes need the admin role", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/admin/reports/stats", "user-token")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, http.StatusUnauthorized, do(http.MethodDelete, "/v1/admin/reports/r1", "").Code)
	})
}
