// Package services – AdminService
//
// This file implements the management operations behind /admin: item
// create/update/delete with image compression, location creation and the
// items they carry, certificate issuance, and searchable listings of
// favorites, location ratings and comments.
//
// A failed image compression never fails the write: the item is stored
// without (or keeping its previous) image and the error is reported back in
// ItemResult.ImageErr for the caller to log.

package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-chai-catalog/internal/cache"
	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/unicode/norm"
)

const (
	maxNameRunes      = 100
	defaultAdminLimit = 100
	certificatePrefix = "CHAI-"
	defaultCertYears  = 1
)

// ImageStore persists compressed item images.
type ImageStore interface {
	Save(r io.Reader) (string, error)
	Remove(rel string) error
}

// ItemInput is an admin item submission. Price is the decimal text as sent.
type ItemInput struct {
	Name        string
	Category    string
	Description string
	Price       string
	Image       io.Reader // optional
}

// ItemResult is a stored item and the outcome of its image processing.
type ItemResult struct {
	Item     *domain.Item
	ImageErr error
}

// CertificateInput describes a certificate to issue. Empty Number generates
// one; zero times default to now and one year later.
type CertificateInput struct {
	UserID     string
	ItemID     string
	Number     string
	IssuedAt   time.Time
	ValidUntil time.Time
}

// AdminService implements catalog management.
type AdminService struct {
	DB     *gorm.DB
	Images ImageStore // nil disables image uploads

	// Optional list cache invalidated after catalog writes.
	Cache cache.Cache
}

// ParsePrice accepts a non-negative decimal with at most two fractional
// digits and returns it rounded to cents.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() || d.Exponent() < -2 {
		return decimal.Decimal{}, invalid("price", ErrInvalidPrice)
	}
	if d.GreaterThanOrEqual(decimal.New(1, 8)) {
		return decimal.Decimal{}, invalid("price", ErrInvalidPrice)
	}
	return d.Round(2), nil
}

func validateItem(in ItemInput) (*domain.Item, error) {
	name := norm.NFC.String(strings.TrimSpace(in.Name))
	if name == "" {
		return nil, invalid("name", ErrEmptyName)
	}
	if len([]rune(name)) > maxNameRunes {
		return nil, invalid("name", errors.New("name must be at most 100 characters"))
	}
	cat, ok := domain.CategoryMasala, true
	if strings.TrimSpace(in.Category) != "" {
		cat, ok = domain.ParseCategory(in.Category)
	}
	if !ok {
		return nil, invalid("category", ErrInvalidCategory)
	}
	price := decimal.NewFromInt(100)
	if strings.TrimSpace(in.Price) != "" {
		p, err := ParsePrice(in.Price)
		if err != nil {
			return nil, err
		}
		price = p
	}
	return &domain.Item{
		Name:        name,
		Category:    cat,
		Description: strings.TrimSpace(in.Description),
		Price:       price,
	}, nil
}

// CreateItem validates and stores a new item, compressing its image.
func (s *AdminService) CreateItem(ctx context.Context, in ItemInput) (*ItemResult, error) {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "CreateItem",
		trace.WithAttributes(attribute.Bool("has_image", in.Image != nil)),
	)
	defer span.End()

	it, err := validateItem(in)
	if err != nil {
		return nil, err
	}
	res := &ItemResult{Item: it}
	if in.Image != nil && s.Images != nil {
		if rel, err := s.Images.Save(in.Image); err != nil {
			res.ImageErr = err
		} else {
			it.Image = rel
		}
	}
	if err := repo.CreateItem(ctx, s.DB, it); err != nil {
		if it.Image != "" {
			_ = s.Images.Remove(it.Image)
		}
		return nil, err
	}
	invalidateLists(ctx, s.Cache)
	return res, nil
}

// UpdateItem replaces the mutable fields of itemID. Without a new image the
// current one is kept; a replaced image file is removed.
func (s *AdminService) UpdateItem(ctx context.Context, itemID string, in ItemInput) (*ItemResult, error) {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "UpdateItem",
		trace.WithAttributes(attribute.String("item.id", itemID)),
	)
	defer span.End()

	cur, err := repo.GetItem(ctx, s.DB, itemID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	it, err := validateItem(in)
	if err != nil {
		return nil, err
	}
	it.ID = cur.ID
	it.CreatedAt = cur.CreatedAt
	it.Image = cur.Image

	res := &ItemResult{Item: it}
	if in.Image != nil && s.Images != nil {
		if rel, err := s.Images.Save(in.Image); err != nil {
			res.ImageErr = err
		} else {
			it.Image = rel
		}
	}
	if err := repo.UpdateItem(ctx, s.DB, it); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if cur.Image != "" && cur.Image != it.Image && s.Images != nil {
		_ = s.Images.Remove(cur.Image)
	}
	invalidateLists(ctx, s.Cache)
	return res, nil
}

// DeleteItem removes itemID with its reviews, favorites and certificates.
func (s *AdminService) DeleteItem(ctx context.Context, itemID string) error {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "DeleteItem",
		trace.WithAttributes(attribute.String("item.id", itemID)),
	)
	defer span.End()

	cur, err := repo.GetItem(ctx, s.DB, itemID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	if err := repo.DeleteItem(ctx, s.DB, itemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	if cur.Image != "" && s.Images != nil {
		_ = s.Images.Remove(cur.Image)
	}
	invalidateLists(ctx, s.Cache)
	return nil
}

// CreateLocation stores a location carrying itemIDs (unknown IDs ignored).
func (s *AdminService) CreateLocation(ctx context.Context, name, address string, itemIDs []string) (*domain.Location, error) {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "CreateLocation",
		trace.WithAttributes(attribute.Int("items", len(itemIDs))),
	)
	defer span.End()

	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return nil, invalid("name", ErrEmptyName)
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, invalid("address", ErrEmptyText)
	}

	loc := &domain.Location{ID: uuid.NewString(), Name: name, Address: address}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateLocation(ctx, tx, loc); err != nil {
			return err
		}
		return repo.SetLocationItems(ctx, tx, loc.ID, itemIDs)
	})
	if err != nil {
		return nil, err
	}
	return repo.GetLocation(ctx, s.DB, loc.ID)
}

// SetLocationItems replaces the items carried by locationID.
func (s *AdminService) SetLocationItems(ctx context.Context, locationID string, itemIDs []string) (*domain.Location, error) {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "SetLocationItems",
		trace.WithAttributes(
			attribute.String("location.id", locationID),
			attribute.Int("items", len(itemIDs)),
		),
	)
	defer span.End()

	if err := repo.SetLocationItems(ctx, s.DB, locationID, itemIDs); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return repo.GetLocation(ctx, s.DB, locationID)
}

// IssueCertificate issues a certificate to a user for an item. Each user
// holds at most one certificate and numbers are unique.
func (s *AdminService) IssueCertificate(ctx context.Context, in CertificateInput) (*domain.Certificate, error) {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "IssueCertificate",
		trace.WithAttributes(
			attribute.String("user.id", in.UserID),
			attribute.String("item.id", in.ItemID),
		),
	)
	defer span.End()

	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, invalid("user_id", ErrEmptyText)
	}
	ok, err := repo.ItemExists(ctx, s.DB, in.ItemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrItemNotFound
	}

	number := strings.ToUpper(strings.TrimSpace(in.Number))
	if number == "" {
		number = NewCertificateNumber()
	}
	if len(number) > 20 {
		return nil, invalid("certificate_number", errors.New("certificate number must be at most 20 characters"))
	}
	issued := in.IssuedAt
	if issued.IsZero() {
		issued = time.Now().UTC()
	}
	until := in.ValidUntil
	if until.IsZero() {
		until = issued.AddDate(defaultCertYears, 0, 0)
	}
	if !until.After(issued) {
		return nil, invalid("valid_until", ErrInvalidWindow)
	}

	c := &domain.Certificate{
		UserID:     userID,
		Number:     number,
		ItemID:     in.ItemID,
		IssuedAt:   issued.UTC(),
		ValidUntil: until.UTC(),
	}
	if err := repo.CreateCertificate(ctx, s.DB, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateCertificate
		}
		return nil, err
	}
	return c, nil
}

// NewCertificateNumber returns a fresh number such as "CHAI-1A2B3C4D5E6F".
func NewCertificateNumber() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return certificatePrefix + strings.ToUpper(hex[:12])
}

// ListCertificates returns issued certificates, newest first.
func (s *AdminService) ListCertificates(ctx context.Context) ([]domain.Certificate, error) {
	return repo.ListCertificates(ctx, s.DB)
}

// SearchFavorites lists favorites matching q by user or item name.
func (s *AdminService) SearchFavorites(ctx context.Context, q string) ([]domain.Favorite, error) {
	return repo.SearchFavorites(ctx, s.DB, q, defaultAdminLimit)
}

// SearchLocationRatings lists location ratings matching q.
func (s *AdminService) SearchLocationRatings(ctx context.Context, q string) ([]domain.LocationRating, error) {
	return repo.SearchLocationRatings(ctx, s.DB, q, defaultAdminLimit)
}

// SearchComments lists review comments matching q.
func (s *AdminService) SearchComments(ctx context.Context, q string) ([]domain.ReviewComment, error) {
	return repo.SearchComments(ctx, s.DB, q, defaultAdminLimit)
}
