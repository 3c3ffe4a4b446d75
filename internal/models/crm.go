package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Company is an organisation contacts and deals belong to.
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name     string `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Industry string `gorm:"size:100" json:"industry,omitempty"`
	Website  string `gorm:"size:255" json:"website,omitempty"`
	Phone    string `gorm:"size:50" json:"phone,omitempty"`
	Address  string `gorm:"size:500" json:"address,omitempty"`
}

// Contact is a person documents can be addressed to.
type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	FirstName string `gorm:"size:100;not null" json:"firstName"`
	LastName  string `gorm:"size:100" json:"lastName"`
	Email     string `gorm:"size:255;uniqueIndex" json:"email"`
	Phone     string `gorm:"size:50" json:"phone,omitempty"`
	Position  string `gorm:"size:100" json:"position,omitempty"`
	Status    string `gorm:"size:20;default:'active'" json:"status"`

	CompanyID *uint    `gorm:"index" json:"companyId,omitempty"`
	Company   *Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL" json:"company,omitempty"`
}

// FullName joins first and last name, skipping empty parts.
func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Deal is a pipeline opportunity a proposal can be attached to.
type Deal struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Title         string          `gorm:"size:255;not null;uniqueIndex" json:"title"`
	Value         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"value"`
	Stage         string          `gorm:"size:30;default:'lead'" json:"stage"`
	Priority      string          `gorm:"size:20;default:'medium'" json:"priority"`
	Probability   int             `gorm:"default:0" json:"probability"`
	ExpectedClose *time.Time      `json:"expectedClose,omitempty"`
	Description   string          `gorm:"type:text" json:"description,omitempty"`

	ContactID *uint    `gorm:"index" json:"contactId,omitempty"`
	Contact   *Contact `gorm:"foreignKey:ContactID;constraint:OnDelete:SET NULL" json:"contact,omitempty"`
	CompanyID *uint    `gorm:"index" json:"companyId,omitempty"`
	Company   *Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL" json:"company,omitempty"`
}
