package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

func stageNames(p []bson.D) []string {
	names := make([]string, 0, len(p))
	for _, stage := range p {
		names = append(names, stage[0].Key)
	}
	return names
}

func TestListPipeline_Stages(t *testing.T) {
	tests := []struct {
		name       string
		filter     ports.ListReportsFilter
		withAuthor bool
		want       []string
	}{
		{name: "everything", want: []string{"$match", "$sort"}},
		{name: "with author", withAuthor: true, want: []string{"$match", "$sort", "$lookup", "$project"}},
		{name: "paged", filter: ports.ListReportsFilter{Page: 2, Limit: 10}, withAuthor: true, want: []string{"$match", "$sort", "$skip", "$limit", "$lookup", "$project"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stageNames(listPipeline(listFilter(tt.filter), tt.filter, tt.withAuthor))
			if len(got) != len(tt.want) {
				t.Fatalf("expected stages %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected stages %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestListPipeline_SkipUsesPage(t *testing.T) {
	f := ports.ListReportsFilter{Page: 3, Limit: 20}
	p := listPipeline(bson.M{}, f, false)

	if skip := p[2][0].Value.(int64); skip != 40 {
		t.Fatalf("expected skip 40, got %d", skip)
	}
}

func TestListFilter(t *testing.T) {
	m := listFilter(ports.ListReportsFilter{Status: domain.StatusProses, Category: "keamanan"})
	if m["status"] != "proses" || m["category"] != "keamanan" {
		t.Fatalf("unexpected filter: %v", m)
	}
	if len(listFilter(ports.ListReportsFilter{})) != 0 {
		t.Fatalf("empty filter should match everything")
	}
}

func TestReportViewDoc_AuthorFallback(t *testing.T) {
	doc := reportViewDoc{reportDoc: reportDoc{
		ID:        primitive.NewObjectID(),
		UserID:    primitive.NewObjectID(),
		Status:    "pending",
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}}

	if v := doc.toView(true); v.AuthorName != domain.AuthorNotFound {
		t.Fatalf("expected %q, got %q", domain.AuthorNotFound, v.AuthorName)
	}
	if v := doc.toView(false); v.AuthorName != "" {
		t.Fatalf("author must stay empty without the join, got %q", v.AuthorName)
	}

	doc.Author = append(doc.Author, struct {
		Name string `bson:"name"`
	}{Name: "Budi"})
	if v := doc.toView(true); v.AuthorName != "Budi" || v.Status != domain.StatusPending {
		t.Fatalf("unexpected view: %+v", v)
	}
}
