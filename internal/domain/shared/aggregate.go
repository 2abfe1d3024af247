package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// SiteAggregateRoot extends BaseAggregateRoot with site scoping.
// Every financial record belongs to exactly one site; repositories
// filter on SiteID the way a multi-tenant system filters on tenant.
type SiteAggregateRoot struct {
	BaseAggregateRoot
	SiteID uuid.UUID
}

// NewSiteAggregateRoot creates a new site-scoped aggregate root
func NewSiteAggregateRoot(siteID uuid.UUID) SiteAggregateRoot {
	return SiteAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		SiteID:            siteID,
	}
}
