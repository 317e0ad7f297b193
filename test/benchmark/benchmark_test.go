package benchmark

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/config"
	"github.com/text-materials-api/internal/mocks"
	"github.com/text-materials-api/internal/models"
	"github.com/text-materials-api/internal/query"
	"github.com/text-materials-api/internal/service"
	"github.com/text-materials-api/internal/validation"
)

var categories = []string{"Science", "History", "Poetry", "Travel", "Cooking"}

// generateMaterials builds n materials spread over categories, authors and
// statuses
func generateMaterials(n int) []models.TextMaterial {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	materials := make([]models.TextMaterial, n)
	for i := range materials {
		author := int64(i%50 + 1)
		materials[i] = models.TextMaterial{
			ID:             int64(i + 1),
			Title:          fmt.Sprintf("Material number %05d", i),
			Content:        "Lorem ipsum dolor sit amet",
			ApprovalStatus: models.ApprovalStatus(i % 3),
			CategoryID:     int64(i%len(categories) + 1),
			CategoryTitle:  categories[i%len(categories)],
			AuthorID:       &author,
			AuthorName:     fmt.Sprintf("author%02d", author),
			DatePublished:  base.Add(time.Duration(i) * time.Hour),
		}
	}
	return materials
}

// BenchmarkApplyPipeline benchmarks filter, search, sort and paging
func BenchmarkApplyPipeline(b *testing.B) {
	materials := generateMaterials(10000)
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	p := query.NewParams(3, 20)
	p.StartDate = &start
	p.SearchCategory = "sci"
	p.ApprovalStatus = []models.ApprovalStatus{models.StatusApproved, models.StatusPending}
	p.OrderBy = "category asc, datePublished desc"

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		query.Apply(materials, p)
	}

	b.ReportMetric(float64(len(materials)*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkApplySort benchmarks multi-key sorting
func BenchmarkApplySort(b *testing.B) {
	materials := generateMaterials(10000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		query.ApplySort(materials, "author asc, title desc, id")
	}
}

// BenchmarkValidation benchmarks request validation
func BenchmarkValidation(b *testing.B) {
	validator := validation.NewValidator()
	req := &models.CreateMaterialRequest{
		Title:      "A perfectly valid title",
		Content:    "Some content",
		CategoryID: 1,
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		validator.Struct(req)
	}
}

// BenchmarkStreamApproved benchmarks the ndjson export
func BenchmarkStreamApproved(b *testing.B) {
	store := mocks.NewStore()
	ctx := context.Background()
	svc := service.NewServices(store.Repositories(), &config.Config{}, zerolog.Nop(), mocks.NewMockMailer())

	user := &models.User{Username: "author", Email: "author@test.com"}
	store.User.Create(ctx, user)
	category := &models.Category{Title: "Science"}
	store.Category.Create(ctx, category)
	for i, m := range generateMaterials(1000) {
		m.AuthorID = &user.ID
		m.CategoryID = category.ID
		m.ApprovalStatus = models.StatusApproved
		if err := store.Material.Create(ctx, &m); err != nil {
			b.Fatalf("seed material %d: %v", i, err)
		}
	}

	var buf bytes.Buffer
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := svc.Document.StreamApproved(ctx, &buf, service.ExportNDJSON); err != nil {
			b.Fatal(err)
		}
	}

	b.SetBytes(int64(buf.Len()))
	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkDispatchPending benchmarks draining the outbox with a pool of
// workers
func BenchmarkDispatchPending(b *testing.B) {
	cfg := &config.Config{
		Notification: config.NotificationConfig{
			BatchSize:   100,
			MaxWorkers:  8,
			MaxAttempts: 1,
			From:        "bench@test.com",
		},
	}

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		store := mocks.NewStore()
		svc := service.NewServices(store.Repositories(), cfg, zerolog.Nop(), mocks.NewMockMailer())
		for j := 0; j < 100; j++ {
			store.Notification.Create(context.Background(), &models.Notification{
				ID:        fmt.Sprintf("n-%d", j),
				UserID:    1,
				Email:     "reader@test.com",
				Subject:   "Material approved",
				Body:      "Your material was approved",
				Status:    models.NotificationPending,
				CreatedAt: time.Now(),
			})
		}
		b.StartTimer()

		svc.Dispatcher.DispatchPending(context.Background())
	}
}
