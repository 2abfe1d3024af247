package models

import (
	"github.com/condo/backend/internal/domain/site"
	"github.com/shopspring/decimal"
)

// SiteModel is the persistence model for the Site aggregate.
type SiteModel struct {
	AggregateModel
	Name                   string           `gorm:"type:varchar(200);not null"`
	Address                string           `gorm:"type:text"`
	City                   string           `gorm:"type:varchar(100)"`
	DefaultMonthlyDues     *decimal.Decimal `gorm:"type:decimal(18,2)"`
	DefaultPaymentStartDay int              `gorm:"not null;default:1"`
	DefaultPaymentEndDay   int              `gorm:"not null;default:20"`
	LateFeeRatePercent     *decimal.Decimal `gorm:"type:decimal(8,4)"`
	LateFeeGraceDays       *int             `gorm:""`
	ContactEmail           string           `gorm:"type:varchar(200)"`
	Currency               string           `gorm:"type:varchar(3);not null;default:'TRY'"`
}

// TableName returns the table name for GORM
func (SiteModel) TableName() string {
	return "sites"
}

// ToDomain converts the persistence model to a domain Site
func (m *SiteModel) ToDomain() *site.Site {
	s := &site.Site{
		Name:                   m.Name,
		Address:                m.Address,
		City:                   m.City,
		DefaultMonthlyDues:     m.DefaultMonthlyDues,
		DefaultPaymentStartDay: m.DefaultPaymentStartDay,
		DefaultPaymentEndDay:   m.DefaultPaymentEndDay,
		LateFeeRatePercent:     m.LateFeeRatePercent,
		LateFeeGraceDays:       m.LateFeeGraceDays,
		ContactEmail:           m.ContactEmail,
		Currency:               m.Currency,
	}
	m.PopulateAggregateRoot(&s.BaseAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain Site
func (m *SiteModel) FromDomain(s *site.Site) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.Address = s.Address
	m.City = s.City
	m.DefaultMonthlyDues = s.DefaultMonthlyDues
	m.DefaultPaymentStartDay = s.DefaultPaymentStartDay
	m.DefaultPaymentEndDay = s.DefaultPaymentEndDay
	m.LateFeeRatePercent = s.LateFeeRatePercent
	m.LateFeeGraceDays = s.LateFeeGraceDays
	m.ContactEmail = s.ContactEmail
	m.Currency = s.Currency
}

// ApartmentModel is the persistence model for the Apartment aggregate.
type ApartmentModel struct {
	SiteAggregateModel
	Block           string           `gorm:"type:varchar(50)"`
	Number          string           `gorm:"type:varchar(50);not null"`
	Floor           *int             `gorm:""`
	ShareRate       decimal.Decimal  `gorm:"type:decimal(8,4);not null;default:1"`
	DuesOverride    *decimal.Decimal `gorm:"type:decimal(18,2)"`
	PaymentStartDay *int             `gorm:""`
	PaymentEndDay   *int             `gorm:""`
	OwnerName       string           `gorm:"type:varchar(200)"`
	OwnerPhone      string           `gorm:"type:varchar(50)"`
	OwnerEmail      string           `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (ApartmentModel) TableName() string {
	return "apartments"
}

// ToDomain converts the persistence model to a domain Apartment
func (m *ApartmentModel) ToDomain() *site.Apartment {
	a := &site.Apartment{
		Block:           m.Block,
		Number:          m.Number,
		Floor:           m.Floor,
		ShareRate:       m.ShareRate,
		DuesOverride:    m.DuesOverride,
		PaymentStartDay: m.PaymentStartDay,
		PaymentEndDay:   m.PaymentEndDay,
		OwnerName:       m.OwnerName,
		OwnerPhone:      m.OwnerPhone,
		OwnerEmail:      m.OwnerEmail,
	}
	m.PopulateSiteAggregateRoot(&a.SiteAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain Apartment
func (m *ApartmentModel) FromDomain(a *site.Apartment) {
	m.FromDomainSiteAggregateRoot(a.SiteAggregateRoot)
	m.Block = a.Block
	m.Number = a.Number
	m.Floor = a.Floor
	m.ShareRate = a.ShareRate
	m.DuesOverride = a.DuesOverride
	m.PaymentStartDay = a.PaymentStartDay
	m.PaymentEndDay = a.PaymentEndDay
	m.OwnerName = a.OwnerName
	m.OwnerPhone = a.OwnerPhone
	m.OwnerEmail = a.OwnerEmail
}
