// Package services – CatalogService
//
// This file implements CatalogService, the read side of the catalog: the
// composite listing filter with clamped pagination, item detail with reviews
// and favorite state, and the top-rated / recently-added lists. Every listed
// item carries its rating summary, computed with one batched aggregate query
// per page.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include filter dimensions and pagination parameters.

package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-chai-catalog/internal/cache"
	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/rating"
	"github.com/tbourn/go-chai-catalog/internal/repo"
	"github.com/tbourn/go-chai-catalog/internal/utils"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultPageSize is the listing page size when none is configured.
	DefaultPageSize = 12

	// ShortListSize bounds the top-rated and recently-added lists.
	ShortListSize = 10
)

// ListQuery is a parsed listing request. Zero values disable a filter.
type ListQuery struct {
	Search     string
	Categories []domain.Category
	Bucket     domain.PriceBucket
	MinRating  int
	Page       int
}

// RatedItem is an item together with its review statistics.
type RatedItem struct {
	domain.Item
	// AverageRating is the mean rating with two decimals, or null when the
	// item has no reviews.
	AverageRating *string `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// ItemPage is one page of the listing.
type ItemPage struct {
	Items       []RatedItem `json:"items"`
	Total       int64       `json:"total"`
	TotalPages  int         `json:"total_pages"`
	CurrentPage int         `json:"current_page"`
	PageSize    int         `json:"page_size"`
}

// ItemDetail is the item page: the item, its reviews and the caller's
// favorite state.
type ItemDetail struct {
	RatedItem
	Reviews       []domain.Review   `json:"reviews"`
	FavoriteCount int64             `json:"favorite_count"`
	IsFavorite    bool              `json:"is_favorite"`
	Locations     []domain.Location `json:"locations"`
}

// CatalogService serves the read side of the catalog.
type CatalogService struct {
	DB       *gorm.DB
	PageSize int

	// Optional list cache; nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration
}

func newRatedItem(it domain.Item, s rating.Summary) RatedItem {
	out := RatedItem{Item: it, ReviewCount: s.Count}
	if !s.Empty() {
		v := s.Display()
		out.AverageRating = &v
	}
	return out
}

// NormalizeSearch trims and NFC-normalizes user search text so composed and
// decomposed forms match the same stored names.
func NormalizeSearch(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func (s *CatalogService) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return DefaultPageSize
}

// ListItems applies q and returns the requested page, clamped into range.
// It never fails on bad page input: pages below 1 yield the first page and
// pages past the end yield the last one.
func (s *CatalogService) ListItems(ctx context.Context, q ListQuery) (*ItemPage, error) {
	cats := make([]string, 0, len(q.Categories))
	for _, c := range q.Categories {
		cats = append(cats, string(c))
	}
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "ListItems",
		trace.WithAttributes(
			attribute.String("filter.search", q.Search),
			attribute.StringSlice("filter.categories", cats),
			attribute.String("filter.price_range", string(q.Bucket)),
			attribute.Int("filter.min_rating", q.MinRating),
			attribute.Int("page", q.Page),
		),
	)
	defer span.End()

	f := repo.ItemFilter{
		Search:     NormalizeSearch(q.Search),
		Categories: q.Categories,
		Bucket:     q.Bucket,
		MinRating:  q.MinRating,
	}
	size := s.pageSize()

	total, err := repo.CountItems(ctx, s.DB, f)
	if err != nil {
		return nil, err
	}
	pages := utils.TotalPages(total, size)
	page := utils.ClampPage(q.Page, pages)

	out := &ItemPage{
		Items:       []RatedItem{},
		Total:       total,
		TotalPages:  pages,
		CurrentPage: page,
		PageSize:    size,
	}
	if total == 0 {
		return out, nil
	}

	items, err := repo.ListItemsPage(ctx, s.DB, f, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	out.Items, err = s.rate(ctx, items)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// rate attaches rating summaries to items, preserving order.
func (s *CatalogService) rate(ctx context.Context, items []domain.Item) ([]RatedItem, error) {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	stats, err := repo.ItemRatingStats(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	out := make([]RatedItem, len(items))
	for i, it := range items {
		out[i] = newRatedItem(it, stats[it.ID])
	}
	return out, nil
}

// Detail returns an item with its reviews (newest first), rating summary,
// favorite count and whether userID (may be empty) has favorited it.
func (s *CatalogService) Detail(ctx context.Context, itemID, userID string) (*ItemDetail, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "Detail",
		trace.WithAttributes(
			attribute.String("item.id", itemID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	it, err := repo.GetItem(ctx, s.DB, itemID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	reviews, err := repo.ListReviewsByItem(ctx, s.DB, itemID)
	if err != nil {
		return nil, err
	}
	values := make([]int, len(reviews))
	for i, r := range reviews {
		values[i] = r.Rating
	}
	favs, err := repo.CountFavorites(ctx, s.DB, itemID)
	if err != nil {
		return nil, err
	}
	isFav := false
	if userID != "" {
		if isFav, err = repo.FavoriteExists(ctx, s.DB, userID, itemID); err != nil {
			return nil, err
		}
	}
	locs, err := repo.ListLocationsForItem(ctx, s.DB, itemID)
	if err != nil {
		return nil, err
	}

	return &ItemDetail{
		RatedItem:     newRatedItem(*it, rating.Summarize(values)),
		Reviews:       reviews,
		FavoriteCount: favs,
		IsFavorite:    isFav,
		Locations:     locs,
	}, nil
}

// TopRated returns up to ten reviewed items ordered by mean rating, highest
// first, ties broken by recency. Items without reviews never appear.
func (s *CatalogService) TopRated(ctx context.Context) ([]RatedItem, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "TopRated")
	defer span.End()

	var cached []RatedItem
	if s.cacheGet(ctx, cache.KeyTopRated, &cached) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	stats, err := repo.TopRatedItemStats(ctx, s.DB, ShortListSize)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(stats))
	rank := make(map[string]int, len(stats))
	for i, st := range stats {
		ids[i] = st.ID
		rank[st.ID] = i
	}
	items, err := repo.ListItemsByIDs(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return rank[items[i].ID] < rank[items[j].ID] })

	out := make([]RatedItem, len(items))
	for i, it := range items {
		out[i] = newRatedItem(it, stats[rank[it.ID]].Summary())
	}
	s.cacheSet(ctx, cache.KeyTopRated, out)
	return out, nil
}

// RecentlyAdded returns the ten most recently created items.
func (s *CatalogService) RecentlyAdded(ctx context.Context) ([]RatedItem, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "RecentlyAdded")
	defer span.End()

	var cached []RatedItem
	if s.cacheGet(ctx, cache.KeyRecentlyAdded, &cached) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	items, err := repo.ListRecentItems(ctx, s.DB, ShortListSize)
	if err != nil {
		return nil, err
	}
	out, err := s.rate(ctx, items)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, cache.KeyRecentlyAdded, out)
	return out, nil
}

// ItemChoices returns every item by name, for the store finder selector.
func (s *CatalogService) ItemChoices(ctx context.Context) ([]domain.Item, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "ItemChoices")
	defer span.End()

	return repo.ListItemChoices(ctx, s.DB)
}

// Version fingerprints the catalog and its reviews for listing ETags. It
// changes whenever an item or a review is added, edited or removed.
func (s *CatalogService) Version(ctx context.Context) (string, error) {
	items, itemsAt, err := repo.CatalogStats(ctx, s.DB)
	if err != nil {
		return "", err
	}
	reviews, reviewsAt, err := repo.ReviewStats(ctx, s.DB, "")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d.%d.%d", items, unixNano(itemsAt), reviews, unixNano(reviewsAt)), nil
}

func unixNano(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}

// cacheGet reports a hit only when the cache returned a decoded value;
// errors count as misses.
func (s *CatalogService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.Cache == nil {
		return false
	}
	hit, err := s.Cache.Get(ctx, key, dst)
	return err == nil && hit
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, v any) {
	if s.Cache == nil {
		return
	}
	ttl := s.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	_ = s.Cache.Set(ctx, key, v, ttl)
}

// invalidateLists drops cached short lists after writes that affect them.
func invalidateLists(ctx context.Context, c cache.Cache) {
	if c == nil {
		return
	}
	_ = c.Delete(ctx, cache.KeyTopRated, cache.KeyRecentlyAdded)
}
