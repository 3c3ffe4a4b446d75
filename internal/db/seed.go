package db

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/diewo77/crm-documents/internal/logging"
	"github.com/diewo77/crm-documents/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedContact struct {
	models.Contact
	company string
}

type seedDeal struct {
	models.Deal
	contact, company string
}

var seedCompanies = []models.Company{
	{Name: "TechVision Inc.", Industry: "Technology", Website: "https://techvision.com", Phone: "+1 (555) 123-4567", Address: "123 Innovation Drive, San Francisco, CA 94102"},
	{Name: "Global Finance Corp", Industry: "Finance", Website: "https://globalfinance.com", Phone: "+1 (555) 234-5678", Address: "456 Wall Street, New York, NY 10005"},
	{Name: "HealthCare Plus", Industry: "Healthcare", Website: "https://healthcareplus.com", Phone: "+1 (555) 345-6789", Address: "789 Medical Center Blvd, Boston, MA 02115"},
	{Name: "RetailMax", Industry: "Retail", Website: "https://retailmax.com", Phone: "+1 (555) 456-7890", Address: "321 Commerce Ave, Chicago, IL 60601"},
	{Name: "Industrial Solutions", Industry: "Manufacturing", Website: "https://industrialsolutions.com", Phone: "+1 (555) 567-8901", Address: "555 Factory Lane, Detroit, MI 48201"},
}

var seedContacts = []seedContact{
	{models.Contact{FirstName: "Sarah", LastName: "Johnson", Email: "sarah.johnson@techvision.com", Phone: "+1 (555) 111-2222", Position: "CEO", Status: "active"}, "TechVision Inc."},
	{models.Contact{FirstName: "Michael", LastName: "Chen", Email: "michael.chen@techvision.com", Phone: "+1 (555) 111-3333", Position: "CTO", Status: "active"}, "TechVision Inc."},
	{models.Contact{FirstName: "James", LastName: "Wilson", Email: "james.wilson@globalfinance.com", Phone: "+1 (555) 222-3333", Position: "Managing Director", Status: "active"}, "Global Finance Corp"},
	{models.Contact{FirstName: "Jennifer", LastName: "Lee", Email: "jennifer.lee@healthcareplus.com", Phone: "+1 (555) 333-5555", Position: "Operations Manager", Status: "active"}, "HealthCare Plus"},
	{models.Contact{FirstName: "Lisa", LastName: "Anderson", Email: "lisa.anderson@retailmax.com", Phone: "+1 (555) 444-5555", Position: "Head of Purchasing", Status: "active"}, "RetailMax"},
	{models.Contact{FirstName: "Patricia", LastName: "Garcia", Email: "patricia.garcia@industrialsolutions.com", Phone: "+1 (555) 555-6666", Position: "Plant Manager", Status: "active"}, "Industrial Solutions"},
	{models.Contact{FirstName: "Daniel", LastName: "Jackson", Email: "daniel.jackson@startup.io", Phone: "+1 (555) 777-8888", Position: "Founder", Status: "lead"}, ""},
}

var seedDeals = []seedDeal{
	{models.Deal{Title: "Enterprise Software License", Value: decimal.NewFromInt(250000), Stage: "negotiation", Priority: "high", Probability: 75, Description: "Annual enterprise license for our flagship product"}, "sarah.johnson@techvision.com", "TechVision Inc."},
	{models.Deal{Title: "Cloud Migration Project", Value: decimal.NewFromInt(180000), Stage: "proposal", Priority: "high", Probability: 60, Description: "Full cloud migration and setup services"}, "michael.chen@techvision.com", "TechVision Inc."},
	{models.Deal{Title: "Financial Analytics Platform", Value: decimal.NewFromInt(450000), Stage: "qualified", Priority: "high", Probability: 40, Description: "Custom analytics dashboard for trading operations"}, "james.wilson@globalfinance.com", "Global Finance Corp"},
	{models.Deal{Title: "Patient Management System", Value: decimal.NewFromInt(320000), Stage: "proposal", Priority: "high", Probability: 55, Description: "Integrated patient records and scheduling system"}, "jennifer.lee@healthcareplus.com", "HealthCare Plus"},
	{models.Deal{Title: "POS System Upgrade", Value: decimal.NewFromInt(125000), Stage: "negotiation", Priority: "medium", Probability: 80, Description: "Point of sale system across all retail locations"}, "lisa.anderson@retailmax.com", "RetailMax"},
	{models.Deal{Title: "Factory Automation Suite", Value: decimal.NewFromInt(520000), Stage: "proposal", Priority: "high", Probability: 50, Description: "Complete factory floor automation system"}, "patricia.garcia@industrialsolutions.com", "Industrial Solutions"},
}

var seedTemplates = []models.EmailTemplate{
	{
		Name:    "Boas-vindas",
		Subject: "Bem-vindo, {{firstName}}!",
		Body:    "<p>Olá {{firstName}},</p><p>Obrigado pelo interesse na {{companyName}}. Estamos ao dispor para o que precisar.</p>",
		Type:    "welcome",
	},
	{
		Name:    "Envio de proposta",
		Subject: "Proposta {{number}}",
		Body:    "<p>Olá {{firstName}},</p><p>Segue em anexo a proposta {{number}} no valor de {{total}}.</p>",
		Type:    "proposal",
	},
	{
		Name:    "Lembrete de pagamento",
		Subject: "Fatura {{number}} por liquidar",
		Body:    "<p>Olá {{firstName}},</p><p>A fatura {{number}} de {{total}} venceu a {{dueDate}}. Agradecemos a regularização.</p>",
		Type:    "follow-up",
	},
}

// Seed inserts demo companies, contacts, deals and email templates. Rows are
// matched by their natural key so running it twice adds nothing.
func Seed(db *gorm.DB, log *slog.Logger) error {
	if log == nil {
		log = logging.Discard()
	}
	return db.Transaction(func(tx *gorm.DB) error {
		companies := map[string]uint{}
		for _, c := range seedCompanies {
			row := c
			if err := tx.Where(models.Company{Name: c.Name}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed company %s: %w", c.Name, err)
			}
			companies[c.Name] = row.ID
		}

		contacts := map[string]uint{}
		for _, c := range seedContacts {
			row := c.Contact
			if id, ok := companies[c.company]; ok {
				row.CompanyID = &id
			}
			if err := tx.Where(models.Contact{Email: row.Email}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed contact %s: %w", row.Email, err)
			}
			contacts[row.Email] = row.ID
		}

		closeDate := time.Now().AddDate(0, 3, 0).Truncate(24 * time.Hour)
		for _, d := range seedDeals {
			row := d.Deal
			row.ExpectedClose = &closeDate
			if id, ok := contacts[d.contact]; ok {
				row.ContactID = &id
			}
			if id, ok := companies[d.company]; ok {
				row.CompanyID = &id
			}
			if err := tx.Where(models.Deal{Title: row.Title}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed deal %s: %w", row.Title, err)
			}
		}

		for _, t := range seedTemplates {
			row := t
			if err := tx.Where(models.EmailTemplate{Name: t.Name}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed template %s: %w", t.Name, err)
			}
		}
		if log != nil {
			log.Info("demo data seeded", "companies", len(seedCompanies), "contacts", len(seedContacts), "deals", len(seedDeals), "templates", len(seedTemplates))
		}
		return nil
	})
}
