package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Identities
// ---------------------------------------------------------------------------

type ctxKey struct{}

// stubIdentities reads the identity placed in the context by asUser/asAdmin.
type stubIdentities struct {
	err error
}

func (s stubIdentities) CurrentIdentity(ctx context.Context) (*domain.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	id, _ := ctx.Value(ctxKey{}).(*domain.Identity)
	return id, nil
}

func asUser(id, name string) context.Context {
	return context.WithValue(context.Background(), ctxKey{}, &domain.Identity{ID: id, Name: name, Email: id + "@example.com", Role: domain.RoleUser})
}

func asAdmin(id string) context.Context {
	return context.WithValue(context.Background(), ctxKey{}, &domain.Identity{ID: id, Name: "Admin", Email: id + "@example.com", Role: domain.RoleAdmin})
}

func newGate() *AuthGate {
	return NewAuthGate(stubIdentities{})
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

type stubReportRepo struct {
	mu        sync.Mutex
	reports   map[string]*domain.Report
	users     map[string]string // id → display name
	seq       int
	clock     time.Time
	createErr error
	calls     map[string]int
}

func newStubReportRepo() *stubReportRepo {
	return &stubReportRepo{
		reports: make(map[string]*domain.Report),
		users:   make(map[string]string),
		clock:   time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
		calls:   make(map[string]int),
	}
}

func (r *stubReportRepo) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *stubReportRepo) Create(_ context.Context, rep *domain.Report) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["create"]++
	if r.createErr != nil {
		return "", r.createErr
	}
	r.seq++
	r.clock = r.clock.Add(time.Minute)
	rep.ID = fmt.Sprintf("r%03d", r.seq)
	rep.Status = domain.StatusPending
	rep.CreatedAt = r.clock
	rep.UpdatedAt = r.clock
	clone := *rep
	r.reports[rep.ID] = &clone
	return rep.ID, nil
}

func (r *stubReportRepo) FindByID(_ context.Context, id string) (*domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	clone := *rep
	return &clone, nil
}

func (r *stubReportRepo) sorted() []domain.Report {
	out := make([]domain.Report, 0, len(r.reports))
	for _, rep := range r.reports {
		out = append(out, *rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubReportRepo) ListByUser(_ context.Context, userID string) ([]domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["list_by_user"]++
	var out []domain.Report
	for _, rep := range r.sorted() {
		if rep.UserID == userID {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (r *stubReportRepo) ListAll(_ context.Context, f ports.ListReportsFilter, withAuthor bool) ([]domain.ReportView, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["list_all"]++
	var out []domain.ReportView
	for _, rep := range r.sorted() {
		if f.Status != "" && rep.Status != f.Status {
			continue
		}
		v := domain.ReportView{Report: rep}
		if withAuthor {
			name, ok := r.users[rep.UserID]
			if !ok {
				name = domain.AuthorNotFound
			}
			v.AuthorName = name
		}
		out = append(out, v)
	}
	return out, int64(len(out)), nil
}

func (r *stubReportRepo) CountByStatus(_ context.Context) (domain.StatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["count"]++
	var c domain.StatusCounts
	for _, rep := range r.reports {
		c.Add(rep.Status, 1)
	}
	return c, nil
}

func (r *stubReportRepo) UpdateStatus(_ context.Context, id string, status domain.ReportStatus) (*domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["update"]++
	rep, ok := r.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	rep.Status = status
	clone := *rep
	return &clone, nil
}

func (r *stubReportRepo) Delete(_ context.Context, id string) (*domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["delete"]++
	rep, ok := r.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	delete(r.reports, id)
	return rep, nil
}

// ---------------------------------------------------------------------------
// Media + upload
// ---------------------------------------------------------------------------

type stubMedia struct {
	checkErr    error
	compressErr error
	compressed  []byte
	checks      int
	compresses  int
}

func (m *stubMedia) Check(contentType string, _ []byte) error {
	m.checks++
	if m.checkErr != nil {
		return m.checkErr
	}
	if len(contentType) < 6 || contentType[:6] != "image/" {
		return domain.ErrNotAnImage
	}
	return nil
}

func (m *stubMedia) Compress(_ context.Context, data []byte) (*ports.PreparedImage, error) {
	m.compresses++
	if m.compressErr != nil {
		return nil, m.compressErr
	}
	out := m.compressed
	if out == nil {
		out = data[:len(data)/2+1]
	}
	return &ports.PreparedImage{Data: out, ContentType: "image/jpeg", Width: 10, Height: 10, Compressed: true}, nil
}

type stubUploader struct {
	url       string
	err       error
	deleteErr error
	uploads   [][]byte
	deleted   []string
}

func (u *stubUploader) Upload(_ context.Context, data []byte, folder string) (*ports.UploadedObject, error) {
	u.uploads = append(u.uploads, append([]byte(nil), data...))
	if u.err != nil {
		return nil, u.err
	}
	return &ports.UploadedObject{URL: u.url, PublicID: folder + "/obj1"}, nil
}

func (u *stubUploader) Delete(_ context.Context, publicID string) error {
	u.deleted = append(u.deleted, publicID)
	return u.deleteErr
}

func photo(contentType string, data []byte) *ports.PhotoInput {
	return &ports.PhotoInput{
		Filename:    "bukti.jpg",
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// ---------------------------------------------------------------------------
// Drafts, dedup, notifications, cache
// ---------------------------------------------------------------------------

type stubDrafts struct {
	mu        sync.Mutex
	forms     map[string]domain.DraftForm
	locations map[string]domain.PickedLocation
	seqs      map[string]int64
	cleared   int
}

func newStubDrafts() *stubDrafts {
	return &stubDrafts{
		forms:     make(map[string]domain.DraftForm),
		locations: make(map[string]domain.PickedLocation),
		seqs:      make(map[string]int64),
	}
}

func (d *stubDrafts) SaveForm(_ context.Context, userID string, form domain.DraftForm) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forms[userID] = form
	return nil
}

func (d *stubDrafts) LoadForm(_ context.Context, userID string) (*domain.DraftForm, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.forms[userID]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (d *stubDrafts) SaveLocation(_ context.Context, userID string, loc domain.PickedLocation) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cur, ok := d.locations[userID]; ok && cur.Seq >= loc.Seq {
		return false, nil
	}
	d.locations[userID] = loc
	return true, nil
}

func (d *stubDrafts) LoadLocation(_ context.Context, userID string) (*domain.PickedLocation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.locations[userID]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (d *stubDrafts) NextSeq(_ context.Context, userID string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seqs[userID]++
	return d.seqs[userID], nil
}

func (d *stubDrafts) Clear(_ context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cleared++
	delete(d.forms, userID)
	delete(d.locations, userID)
	return nil
}

const dedupPending = "pending"

type stubDedup struct {
	mu       sync.Mutex
	keys     map[string]string
	released int
}

func (d *stubDedup) Claim(_ context.Context, userID, key string) (bool, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.keys == nil {
		d.keys = make(map[string]string)
	}
	v, ok := d.keys[userID+"/"+key]
	if !ok {
		d.keys[userID+"/"+key] = dedupPending
		return true, "", nil
	}
	if v == dedupPending {
		return false, "", nil
	}
	return false, v, nil
}

func (d *stubDedup) Complete(_ context.Context, userID, key, reportID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys[userID+"/"+key] = reportID
	return nil
}

func (d *stubDedup) Release(_ context.Context, userID, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.keys[userID+"/"+key] == dedupPending {
		delete(d.keys, userID+"/"+key)
		d.released++
	}
	return nil
}

type recordingNotifier struct {
	changes []domain.ReportChange
}

func (n *recordingNotifier) ReportsChanged(_ context.Context, c domain.ReportChange) {
	n.changes = append(n.changes, c)
}

type stubStatsCache struct {
	value       *domain.StatusCounts
	invalidated int
}

func (c *stubStatsCache) Get(context.Context) (*domain.StatusCounts, error) {
	return c.value, nil
}

func (c *stubStatsCache) Set(_ context.Context, counts domain.StatusCounts) error {
	c.value = &counts
	return nil
}

func (c *stubStatsCache) Invalidate(context.Context) error {
	c.invalidated++
	c.value = nil
	return nil
}

type stubGeocoder struct {
	address string
	err     error
	calls   int
}

func (g *stubGeocoder) Reverse(context.Context, domain.Coordinates) (string, error) {
	g.calls++
	return g.address, g.err
}
