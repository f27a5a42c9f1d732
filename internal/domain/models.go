// Package domain defines the persistence models for the chai catalog: items,
// reviews, locations, favorites, location ratings, review comments and
// certificates. These types are mapped with GORM and form the core data layer
// of the catalog service.
//
// Users are owned by an external identity provider; they appear here only as
// opaque string identifiers (UserID columns) without a local users table.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a cataloged chai variety that users can review and favorite.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: display name, at most 100 characters.
//   - Category: one of the fixed Category codes (ML, GR, KL, PL, EL).
//   - Description: free text, searched together with Name.
//   - Price: non-negative amount with exactly two decimal digits.
//   - Image: path of the compressed image relative to the media root ("" when none).
//   - CreatedAt: listing order key (most recent first).
type Item struct {
	ID          string          `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string          `json:"name"        gorm:"type:varchar(100);not null"`
	Category    Category        `json:"category"    gorm:"type:varchar(2);not null;index:idx_items_category_created,priority:1"`
	Description string          `json:"description" gorm:"type:text;not null;default:''"`
	Price       decimal.Decimal `json:"price"       gorm:"type:numeric(10,2);not null"`
	Image       string          `json:"image"       gorm:"type:varchar(255);not null;default:''"`
	CreatedAt   time.Time       `json:"created_at"  gorm:"index;index:idx_items_category_created,priority:2"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName returns the database table name for Item.
func (Item) TableName() string { return "items" }

// Review is a user's rating and text about an item. A user may review the
// same item any number of times. CommentCount is denormalized and only ever
// changed through the comment creation flow.
type Review struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	ItemID       string    `json:"item_id"       gorm:"type:char(36);not null;index:idx_reviews_item_created,priority:1"`
	UserID       string    `json:"user_id"       gorm:"type:varchar(64);not null;index:idx_reviews_user_created,priority:1"`
	Text         string    `json:"review_text"   gorm:"type:text;not null"`
	Rating       int       `json:"rating"        gorm:"not null;check:rating BETWEEN 1 AND 5"`
	CommentCount int       `json:"comment_count" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"    gorm:"index:idx_reviews_item_created,priority:2;index:idx_reviews_user_created,priority:2"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Item is the reviewed variety. Reviews are cascade-deleted with it.
	Item Item `json:"-" gorm:"foreignKey:ItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }

// Location is a retail store carrying a set of items.
type Location struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(100);not null"`
	Address   string    `json:"address"    gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// Items is the many-to-many set of varieties sold at this location.
	Items []Item `json:"items,omitempty" gorm:"many2many:location_items;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Location.
func (Location) TableName() string { return "locations" }

// Favorite marks an item as a favorite of a user. At most one row may exist
// per (user_id, item_id); the unique index is the enforcement backstop for
// concurrent toggles. Rows are hard-deleted so the index never sees ghosts.
type Favorite struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;uniqueIndex:ux_favorite_user_item,priority:1;index:idx_favorites_user_created,priority:1"`
	ItemID    string    `json:"item_id"    gorm:"type:char(36);not null;uniqueIndex:ux_favorite_user_item,priority:2"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_favorites_user_created,priority:2"`

	Item Item `json:"item,omitempty" gorm:"foreignKey:ItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Favorite.
func (Favorite) TableName() string { return "favorites" }

// LocationRating is a user's single rating of a location. The pair
// (location_id, user_id) is unique.
type LocationRating struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	LocationID string    `json:"location_id" gorm:"type:char(36);not null;uniqueIndex:ux_location_rating_location_user,priority:1;index:idx_location_ratings_location_created,priority:1"`
	UserID     string    `json:"user_id"     gorm:"type:varchar(64);not null;uniqueIndex:ux_location_rating_location_user,priority:2;index"`
	Rating     int       `json:"rating"      gorm:"not null;check:rating BETWEEN 1 AND 5"`
	Comment    string    `json:"comment"     gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time `json:"created_at"  gorm:"index:idx_location_ratings_location_created,priority:2"`

	Location Location `json:"-" gorm:"foreignKey:LocationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for LocationRating.
func (LocationRating) TableName() string { return "location_ratings" }

// ReviewComment is a reply to a review. Helpful counts upvotes.
type ReviewComment struct {
	ID        string    `json:"id"           gorm:"type:char(36);primaryKey"`
	ReviewID  string    `json:"review_id"    gorm:"type:char(36);not null;index:idx_comments_review_created,priority:1"`
	UserID    string    `json:"user_id"      gorm:"type:varchar(64);not null"`
	Text      string    `json:"comment_text" gorm:"type:text;not null"`
	Helpful   int       `json:"is_helpful"   gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"   gorm:"index:idx_comments_review_created,priority:2"`

	Review Review `json:"-" gorm:"foreignKey:ReviewID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ReviewComment.
func (ReviewComment) TableName() string { return "review_comments" }

// Certificate is a static credential issued to a user for an item. Each user
// holds at most one certificate and numbers are globally unique.
type Certificate struct {
	ID         string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	UserID     string    `json:"user_id"            gorm:"type:varchar(64);not null;uniqueIndex"`
	Number     string    `json:"certificate_number" gorm:"type:varchar(20);not null;uniqueIndex"`
	ItemID     string    `json:"item_id"            gorm:"type:char(36);not null;index"`
	IssuedAt   time.Time `json:"date_issued"        gorm:"not null;index"`
	ValidUntil time.Time `json:"valid_until"        gorm:"not null"`

	Item Item `json:"-" gorm:"foreignKey:ItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Certificate.
func (Certificate) TableName() string { return "certificates" }

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Item{},
		&Review{},
		&Location{},
		&Favorite{},
		&LocationRating{},
		&ReviewComment{},
		&Certificate{},
		&Idempotency{},
	}
}
