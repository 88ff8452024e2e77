package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

func seedReport(t *testing.T, repo *stubReportRepo, userID, category string) string {
	t.Helper()
	r, err := domain.NewReport(userID, category, "Jl. Kenanga 3", "Deskripsi laporan", "", nil)
	require.NoError(t, err)
	id, err := repo.Create(context.Background(), r)
	require.NoError(t, err)
	return id
}

func TestReportQuery_ListMine_OnlyOwnNewestFirst(t *testing.T) {
	repo := newStubReportRepo()
	first := seedReport(t, repo, "u1", "lingkungan")
	seedReport(t, repo, "u2", "keamanan")
	second := seedReport(t, repo, "u1", "fasilitas")
	svc := NewReportQueryService(newGate(), repo, nil, discardLogger)

	mine, err := svc.ListMine(asUser("u1", "Budi"))

	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second, mine[0].ID)
	assert.Equal(t, first, mine[1].ID)
}

func TestReportQuery_ListMine_EmptyIsNotNil(t *testing.T) {
	svc := NewReportQueryService(newGate(), newStubReportRepo(), nil, discardLogger)

	mine, err := svc.ListMine(asUser("u9", "Nina"))

	require.NoError(t, err)
	assert.NotNil(t, mine)
	assert.Empty(t, mine)
}

func TestReportQuery_ListMine_ShowsAdminStatusChange(t *testing.T) {
	repo := newStubReportRepo()
	id := seedReport(t, repo, "u1", "lingkungan")
	triage := NewTriageService(newGate(), repo, nil, discardLogger)
	svc := NewReportQueryService(newGate(), repo, nil, discardLogger)

	_, err := triage.ChangeStatus(asAdmin("a1"), id, "selesai")
	require.NoError(t, err)

	mine, err := svc.ListMine(asUser("u1", "Budi"))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, domain.StatusSelesai, mine[0].Status)
}

func TestReportQuery_RequiresIdentity(t *testing.T) {
	repo := newStubReportRepo()
	svc := NewReportQueryService(newGate(), repo, nil, discardLogger)

	_, err := svc.ListMine(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, _, err = svc.ListAll(asUser("u1", "Budi"), ports.ListReportsFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Stats(asUser("u1", "Budi"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Zero(t, repo.count("list_by_user"))
	assert.Zero(t, repo.count("list_all"))
	assert.Zero(t, repo.count("count"))
}

func TestReportQuery_Get_OwnerOrAdmin(t *testing.T) {
	repo := newStubReportRepo()
	id := seedReport(t, repo, "u1", "lingkungan")
	svc := NewReportQueryService(newGate(), repo, nil, discardLogger)

	got, err := svc.Get(asUser("u1", "Budi"), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = svc.Get(asAdmin("a1"), id)
	require.NoError(t, err)

	_, err = svc.Get(asUser("u2", "Siti"), id)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Get(asUser("u1", "Budi"), "r999")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestReportQuery_ListAll_ResolvesAuthorNames(t *testing.T) {
	repo := newStubReportRepo()
	repo.users["u1"] = "Budi"
	seedReport(t, repo, "u1", "lingkungan")
	seedReport(t, repo, "ghost", "keamanan")
	svc := NewReportQueryService(newGate(), repo, nil, discardLogger)

	views, total, err := svc.ListAll(asAdmin("a1"), ports.ListReportsFilter{})

	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	names := map[string]string{}
	for _, v := range views {
		names[v.UserID] = v.AuthorName
	}
	assert.Equal(t, "Budi", names["u1"])
	assert.Equal(t, domain.AuthorNotFound, names["ghost"])
}

func TestReportQuery_ListAll_RejectsUnknownStatusFilter(t *testing.T) {
	svc := NewReportQueryService(newGate(), newStubReportRepo(), nil, discardLogger)

	_, _, err := svc.ListAll(asAdmin("a1"), ports.ListReportsFilter{Status: "ditolak"})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("status"))
}

func TestReportQuery_ListAll_RejectsOutOfRangePage(t *testing.T) {
	repo := newStubReportRepo()
	svc := NewReportQueryService(newGate(), repo, nil, discardLogger)

	_, _, err := svc.ListAll(asAdmin("a1"), ports.ListReportsFilter{Page: math.MaxInt64 / 50, Limit: 100})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"page"}, ve.Fields)
	assert.Zero(t, repo.calls["list_all"], "store must not be queried")

	_, _, err = svc.ListAll(asAdmin("a1"), ports.ListReportsFilter{Page: maxListPage, Limit: 100})
	assert.NoError(t, err)
}

func TestReportQuery_Stats_PartsSumToTotal(t *testing.T) {
	repo := newStubReportRepo()
	ids := []string{
		seedReport(t, repo, "u1", "a"),
		seedReport(t, repo, "u1", "b"),
		seedReport(t, repo, "u2", "c"),
		seedReport(t, repo, "u3", "d"),
	}
	triage := NewTriageService(newGate(), repo, nil, discardLogger)
	_, err := triage.ChangeStatus(asAdmin("a1"), ids[0], "proses")
	require.NoError(t, err)
	_, err = triage.ChangeStatus(asAdmin("a1"), ids[1], "selesai")
	require.NoError(t, err)

	svc := NewReportQueryService(newGate(), repo, nil, discardLogger)
	counts, err := svc.Stats(asAdmin("a1"))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCounts{Total: 4, Pending: 2, Proses: 1, Selesai: 1}, counts)
	assert.Equal(t, counts.Total, counts.Pending+counts.Proses+counts.Selesai)
}

func TestReportQuery_Stats_UsesCache(t *testing.T) {
	repo := newStubReportRepo()
	seedReport(t, repo, "u1", "a")
	cache := &stubStatsCache{}
	svc := NewReportQueryService(newGate(), repo, cache, discardLogger)

	first, err := svc.Stats(asAdmin("a1"))
	require.NoError(t, err)
	second, err := svc.Stats(asAdmin("a1"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.count("count"))

	notifier := NewChangeNotifier(cache, nil, discardLogger)
	notifier.ReportsChanged(context.Background(), domain.ReportChange{Kind: domain.ChangeCreated})
	_, err = svc.Stats(asAdmin("a1"))
	require.NoError(t, err)
	assert.Equal(t, 2, repo.count("count"))
}
