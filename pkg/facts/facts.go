// Package facts reads the structured facts the ingestion pipeline extracts
// from source documents (contact details, pricing bullets). Read-only here:
// this service never writes facts.
package facts

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Canonical fact names (controlled vocabulary, written at ingest time).
const (
	ContactEmail    = "contact_email"
	ContactPhone    = "contact_phone"
	ContactURL      = "contact_url"
	OfficeAddress   = "office_address"
	PricingBullet   = "pricing_bullet"
	PricingOverview = "pricing_overview"
)

// ContactAndPricingNames is the fact set the orchestrator injects into
// every generated prompt.
func ContactAndPricingNames() []string {
	return []string{ContactEmail, ContactPhone, ContactURL, OfficeAddress, PricingBullet, PricingOverview}
}

// Fact is one named value with its origin.
type Fact struct {
	Name      string    `json:"name" gorm:"primaryKey"`
	Value     string    `json:"value"`
	URI       string    `json:"uri"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Fact) TableName() string { return "facts" }

// Lookup fetches facts by canonical names. Missing names are simply absent
// from the result map.
type Lookup interface {
	GetFacts(ctx context.Context, names []string) (map[string]Fact, error)
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ Lookup = (*Repository)(nil)

func (r *Repository) GetFacts(ctx context.Context, names []string) (map[string]Fact, error) {
	if len(names) == 0 {
		return map[string]Fact{}, nil
	}
	var rows []Fact
	err := r.db.WithContext(ctx).
		Where("name IN ?", names).
		Order("updated_at DESC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]Fact, len(rows))
	for _, f := range rows {
		// rows come newest-first; keep the first (latest) value per name
		if _, seen := out[f.Name]; !seen {
			out[f.Name] = f
		}
	}
	return out, nil
}
