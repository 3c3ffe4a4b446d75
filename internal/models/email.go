package models

import "time"

// EmailTemplate is a reusable message with {{variable}} placeholders.
type EmailTemplate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name    string `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Subject string `gorm:"size:500;not null" json:"subject"`
	Body    string `gorm:"type:text;not null" json:"body"`
	Type    string `gorm:"size:50;not null;default:'custom'" json:"type"`
}

type EmailStatus string

const (
	EmailStatusSent   EmailStatus = "sent"
	EmailStatusFailed EmailStatus = "failed"
)

// EmailLog records every send attempt, successful or not.
type EmailLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"sentAt"`

	Recipient string      `gorm:"size:255;not null" json:"to"`
	Subject   string      `gorm:"size:500;not null" json:"subject"`
	Body      string      `gorm:"type:text" json:"body"`
	Status    EmailStatus `gorm:"size:20;not null" json:"status"`
	Error     string      `gorm:"type:text" json:"error,omitempty"`

	ContactID  *uint          `gorm:"index" json:"contactId,omitempty"`
	Contact    *Contact       `gorm:"foreignKey:ContactID;constraint:OnDelete:SET NULL" json:"contact,omitempty"`
	TemplateID *uint          `gorm:"index" json:"templateId,omitempty"`
	Template   *EmailTemplate `gorm:"foreignKey:TemplateID;constraint:OnDelete:SET NULL" json:"template,omitempty"`
}
