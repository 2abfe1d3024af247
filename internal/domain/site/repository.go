package site

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SiteRepository defines the interface for site persistence
type SiteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Site, error)
	FindAll(ctx context.Context) ([]Site, error)
	Save(ctx context.Context, s *Site) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ApartmentRepository defines the interface for apartment persistence
type ApartmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Apartment, error)
	FindBySite(ctx context.Context, siteID uuid.UUID) ([]Apartment, error)
	// TotalShareRate sums the share rates of all apartments of the site.
	TotalShareRate(ctx context.Context, siteID uuid.UUID) (decimal.Decimal, error)
	Save(ctx context.Context, a *Apartment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
