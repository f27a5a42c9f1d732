// Package services – LocationService
//
// This file implements the store finder and location ratings. A user may
// rate a location once; a second attempt is rejected with
// ErrDuplicateRating and leaves the first rating untouched. The unique index
// on (location_id, user_id) enforces this under concurrent submissions.

package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/rating"
	"github.com/tbourn/go-chai-catalog/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RatedLocation is a location with its rating statistics.
type RatedLocation struct {
	domain.Location
	AverageRating *string `json:"average_rating"`
	RatingCount   int64   `json:"rating_count"`
}

// StoreFinder lists the locations carrying one item.
type StoreFinder struct {
	Item      domain.Item     `json:"item"`
	Locations []RatedLocation `json:"locations"`
}

// LocationDetail is a location page: ratings and the caller's own rating.
type LocationDetail struct {
	RatedLocation
	Ratings    []domain.LocationRating `json:"ratings"`
	UserRating *domain.LocationRating  `json:"user_rating"`
}

// LocationService serves locations and their ratings.
type LocationService struct {
	DB *gorm.DB
}

func newRatedLocation(l domain.Location, s rating.Summary) RatedLocation {
	out := RatedLocation{Location: l, RatingCount: s.Count}
	if !s.Empty() {
		v := s.Display()
		out.AverageRating = &v
	}
	return out
}

func (s *LocationService) rate(ctx context.Context, locs []domain.Location) ([]RatedLocation, error) {
	ids := make([]string, len(locs))
	for i, l := range locs {
		ids[i] = l.ID
	}
	stats, err := repo.LocationRatingStats(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	out := make([]RatedLocation, len(locs))
	for i, l := range locs {
		out[i] = newRatedLocation(l, stats[l.ID])
	}
	return out, nil
}

// List returns every location with its rating summary, by name.
func (s *LocationService) List(ctx context.Context) ([]RatedLocation, error) {
	tr := otel.Tracer("services/LocationService")
	ctx, span := tr.Start(ctx, "List")
	defer span.End()

	locs, err := repo.ListLocations(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	return s.rate(ctx, locs)
}

// ForItem returns the item and the locations carrying it, each with its
// rating summary.
func (s *LocationService) ForItem(ctx context.Context, itemID string) (*StoreFinder, error) {
	tr := otel.Tracer("services/LocationService")
	ctx, span := tr.Start(ctx, "ForItem",
		trace.WithAttributes(attribute.String("item.id", itemID)),
	)
	defer span.End()

	it, err := repo.GetItem(ctx, s.DB, itemID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	locs, err := repo.ListLocationsForItem(ctx, s.DB, itemID)
	if err != nil {
		return nil, err
	}
	rated, err := s.rate(ctx, locs)
	if err != nil {
		return nil, err
	}
	return &StoreFinder{Item: *it, Locations: rated}, nil
}

// Detail returns a location with its items, ratings and, when userID is set,
// the caller's own rating.
func (s *LocationService) Detail(ctx context.Context, locationID, userID string) (*LocationDetail, error) {
	tr := otel.Tracer("services/LocationService")
	ctx, span := tr.Start(ctx, "Detail",
		trace.WithAttributes(
			attribute.String("location.id", locationID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	loc, err := repo.GetLocation(ctx, s.DB, locationID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	ratings, err := repo.ListLocationRatings(ctx, s.DB, locationID)
	if err != nil {
		return nil, err
	}
	values := make([]int, len(ratings))
	var mine *domain.LocationRating
	for i := range ratings {
		values[i] = ratings[i].Rating
		if userID != "" && ratings[i].UserID == userID {
			mine = &ratings[i]
		}
	}
	return &LocationDetail{
		RatedLocation: newRatedLocation(*loc, rating.Summarize(values)),
		Ratings:       ratings,
		UserRating:    mine,
	}, nil
}

// Rate records userID's single rating of locationID.
func (s *LocationService) Rate(ctx context.Context, userID, locationID string, value int, comment string) (*domain.LocationRating, error) {
	tr := otel.Tracer("services/LocationService")
	ctx, span := tr.Start(ctx, "Rate",
		trace.WithAttributes(
			attribute.String("location.id", locationID),
			attribute.String("user.id", userID),
			attribute.Int("rating", value),
		),
	)
	defer span.End()

	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if !rating.Valid(value) {
		return nil, invalid("rating", ErrInvalidRating)
	}

	var n int64
	if err := s.DB.WithContext(ctx).Model(&domain.Location{}).Where("id = ?", locationID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrLocationNotFound
	}

	lr := &domain.LocationRating{
		LocationID: locationID,
		UserID:     userID,
		Rating:     value,
		Comment:    strings.TrimSpace(comment),
	}
	if err := repo.CreateLocationRating(ctx, s.DB, lr); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateRating
		}
		return nil, err
	}
	return lr, nil
}
