package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/diewo77/crm-documents/internal/email"
	"github.com/diewo77/crm-documents/internal/logging"
	"github.com/diewo77/crm-documents/internal/metrics"
	"github.com/diewo77/crm-documents/internal/models"
	"github.com/diewo77/crm-documents/validation"
	"gorm.io/gorm"
)

// LogLimit caps the number of email logs returned by Logs.
const LogLimit = 50

// SendInput is a message to send. Variables are substituted in subject and body.
type SendInput struct {
	To         string            `json:"to"`
	Subject    string            `json:"subject"`
	HTML       string            `json:"html"`
	ContactID  *uint             `json:"contactId,omitempty"`
	TemplateID *uint             `json:"templateId,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
}

// TemplateTypes are the template kinds offered to users.
var TemplateTypes = []string{"proposal", "follow-up", "welcome", "custom"}

type TemplateInput struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Type    string `json:"type,omitempty"`
}

func (in *TemplateInput) validate() validation.Violations {
	in.Name = strings.TrimSpace(in.Name)
	if in.Type == "" {
		in.Type = "custom"
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Required("subject", in.Subject, v)
	validation.Required("body", in.Body, v)
	validation.OneOf("type", in.Type, TemplateTypes, v)
	return v
}

// EmailService renders, sends and records outgoing email.
type EmailService struct {
	db      *gorm.DB
	sender  email.Sender
	from    string
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewEmailService(db *gorm.DB, sender email.Sender, from string, log *slog.Logger, m *metrics.Metrics) *EmailService {
	if log == nil {
		log = logging.Discard()
	}
	return &EmailService{db: db, sender: sender, from: from, log: log, metrics: m}
}

// Send delivers the message and records the attempt. A failed delivery is
// still logged, then reported as a dependency failure.
func (s *EmailService) Send(ctx context.Context, in SendInput) (*models.EmailLog, error) {
	v := validation.Violations{}
	validation.Required("to", in.To, v)
	validation.Required("subject", in.Subject, v)
	validation.Required("html", in.HTML, v)
	if !v.Empty() {
		return nil, invalid(v)
	}
	msg := email.Message{
		From:    s.from,
		To:      strings.TrimSpace(in.To),
		Subject: email.Parse(in.Subject, in.Variables),
		HTML:    email.Parse(in.HTML, in.Variables),
	}
	entry := models.EmailLog{
		Recipient:  msg.To,
		Subject:    msg.Subject,
		Body:       msg.HTML,
		Status:     models.EmailStatusSent,
		ContactID:  in.ContactID,
		TemplateID: in.TemplateID,
	}
	sendErr := s.sender.Send(ctx, msg)
	if sendErr != nil {
		entry.Status = models.EmailStatusFailed
		entry.Error = sendErr.Error()
		s.log.ErrorContext(ctx, "email send failed", "to", msg.To, "err", sendErr)
	}
	s.metrics.EmailSent(string(entry.Status))
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, classify("record email", err)
	}
	if sendErr != nil {
		return &entry, &Error{Kind: ErrDependency, Message: "send email", Err: sendErr}
	}
	s.log.InfoContext(ctx, "email sent", "to", msg.To, "log_id", entry.ID)
	return &entry, nil
}

// Logs returns the latest LogLimit entries, newest first, optionally for one contact.
func (s *EmailService) Logs(ctx context.Context, contactID *uint) ([]models.EmailLog, error) {
	q := s.db.WithContext(ctx).Preload("Contact").Preload("Template")
	if contactID != nil {
		q = q.Where("contact_id = ?", *contactID)
	}
	var out []models.EmailLog
	if err := q.Order("created_at DESC, id DESC").Limit(LogLimit).Find(&out).Error; err != nil {
		return nil, classify("list email logs", err)
	}
	return out, nil
}

func (s *EmailService) Templates(ctx context.Context) ([]models.EmailTemplate, error) {
	var out []models.EmailTemplate
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, classify("list templates", err)
	}
	return out, nil
}

func (s *EmailService) Template(ctx context.Context, id uint) (*models.EmailTemplate, error) {
	var t models.EmailTemplate
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("template", id)
		}
		return nil, classify("load template", err)
	}
	return &t, nil
}

// CreateTemplate stores a template; a duplicate name is a conflict.
func (s *EmailService) CreateTemplate(ctx context.Context, in TemplateInput) (*models.EmailTemplate, error) {
	if v := in.validate(); !v.Empty() {
		return nil, invalid(v)
	}
	t := models.EmailTemplate{Name: in.Name, Subject: in.Subject, Body: in.Body, Type: in.Type}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, classify("create template", err)
	}
	return &t, nil
}

func (s *EmailService) UpdateTemplate(ctx context.Context, id uint, in TemplateInput) (*models.EmailTemplate, error) {
	if v := in.validate(); !v.Empty() {
		return nil, invalid(v)
	}
	t, err := s.Template(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Name, t.Subject, t.Body, t.Type = in.Name, in.Subject, in.Body, in.Type
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return nil, classify("update template", err)
	}
	return t, nil
}

// DeleteTemplate removes a template; logs that used it keep their copy of
// subject and body and lose the link.
func (s *EmailService) DeleteTemplate(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.EmailLog{}).Where("template_id = ?", id).Update("template_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.EmailTemplate{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("template", id)
		}
		return nil
	})
	return classify("delete template", err)
}
