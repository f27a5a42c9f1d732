// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for certificates.
package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-chai-catalog/internal/domain"
)

// CreateCertificate inserts c. A second certificate for the same user, or a
// reused number, yields ErrDuplicate.
func CreateCertificate(ctx context.Context, db *gorm.DB, c *domain.Certificate) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := db.WithContext(ctx).Omit("Item").Create(c).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetCertificateByUser returns the certificate held by userID, or ErrNotFound.
func GetCertificateByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.Certificate, error) {
	var c domain.Certificate
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCertificates returns certificates, most recently issued first.
func ListCertificates(ctx context.Context, db *gorm.DB) ([]domain.Certificate, error) {
	var out []domain.Certificate
	err := db.WithContext(ctx).Order("issued_at DESC, id DESC").Find(&out).Error
	return out, err
}
