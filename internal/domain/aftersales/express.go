package aftersales

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExpressCompany is one carrier in the registry. TrackingURLTemplate
// contains a {trackingNo} placeholder.
type ExpressCompany struct {
	ID                  uuid.UUID
	Code                string
	Name                string
	Active              bool
	TrackingURLTemplate string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TrackingURL expands the template for a concrete tracking number
func (e *ExpressCompany) TrackingURL(trackingNumber string) string {
	return strings.ReplaceAll(e.TrackingURLTemplate, "{trackingNo}", trackingNumber)
}

// ReturnAddress is a warehouse address returned goods are shipped to
type ReturnAddress struct {
	ID        uuid.UUID
	Contact   string
	Phone     string
	Region    string
	Detail    string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullAddress renders the address as a single display line
func (r *ReturnAddress) FullAddress() string {
	return r.Region + " " + r.Detail
}
