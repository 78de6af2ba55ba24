// Package services – RefugeService
//
// This file implements RefugeService, which owns the read side of the refuge
// directory: listing, fetching by id, and diacritic-insensitive search over
// name/region/description via the search.Index.
//
// Observability: Search is OpenTelemetry-instrumented; spans carry the query
// and result count.
package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mterrades/go-refuge-sync/internal/domain"
	"github.com/mterrades/go-refuge-sync/internal/repo"
	"github.com/mterrades/go-refuge-sync/internal/search"
)

// RefugeService provides directory-level operations over refuges.
type RefugeService struct {
	DB *gorm.DB

	// SearchLimit caps search results regardless of the caller's limit;
	// zero means 10.
	SearchLimit int

	mu    sync.Mutex
	index search.Index
	byID  map[string]domain.Refuge
	// indexed is the directory row count the index was built from; a count
	// change invalidates the index. Directory edits are rare enough that
	// this is the only rebuild trigger needed.
	indexed int64
}

// NewRefugeService constructs a RefugeService.
func NewRefugeService(db *gorm.DB) *RefugeService {
	return &RefugeService{DB: db, SearchLimit: 10}
}

// List returns the whole directory ordered by name.
func (s *RefugeService) List(ctx context.Context) ([]domain.Refuge, error) {
	return repo.ListRefuges(ctx, s.DB)
}

// Get fetches one refuge, mapping a missing row to ErrRefugeNotFound.
func (s *RefugeService) Get(ctx context.Context, id string) (*domain.Refuge, error) {
	r, err := repo.GetRefuge(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRefugeNotFound
	}
	return r, err
}

// Search returns up to limit refuges matching q, best first. The query is
// folded so accents never matter; limit values outside (0, SearchLimit] fall
// back to SearchLimit.
func (s *RefugeService) Search(ctx context.Context, q string, limit int) ([]domain.Refuge, error) {
	tr := otel.Tracer("services/RefugeService")
	ctx, span := tr.Start(ctx, "Search",
		trace.WithAttributes(attribute.String("search.query", q)),
	)
	defer span.End()

	if strings.TrimSpace(q) == "" {
		return []domain.Refuge{}, nil
	}
	idx, byID, err := s.currentIndex(ctx)
	if err != nil {
		return nil, err
	}

	max := s.SearchLimit
	if max <= 0 {
		max = 10
	}
	if limit <= 0 || limit > max {
		limit = max
	}
	results := idx.Search(q, limit)
	out := make([]domain.Refuge, 0, len(results))
	for _, res := range results {
		if r, ok := byID[res.RefugeID]; ok {
			out = append(out, r)
		}
	}
	span.SetAttributes(attribute.Int("search.results", len(out)))
	return out, nil
}

// currentIndex returns the cached index, rebuilding it when the directory
// row count changed since the last build.
func (s *RefugeService) currentIndex(ctx context.Context) (search.Index, map[string]domain.Refuge, error) {
	count, err := repo.CountRefuges(ctx, s.DB)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil || s.indexed != count {
		refuges, err := repo.ListRefuges(ctx, s.DB)
		if err != nil {
			return nil, nil, err
		}
		s.index = search.NewIndex(refuges)
		s.indexed = count
		s.byID = make(map[string]domain.Refuge, len(refuges))
		for _, r := range refuges {
			s.byID[r.ID] = r
		}
	}
	return s.index, s.byID, nil
}
