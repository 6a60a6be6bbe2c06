package product

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
)

// Identity is the equivalence key that decides when two physical units count
// as the same product for grouping and availability counts. Two units with
// equal identities are interchangeable for display, but reservation is always
// by explicit unit reference, never by identity.
type Identity struct {
	Name        string
	Category    string
	Subcategory string
	Brand       string
	Campaign    string
	Donor       string
	PartnerName string
	Barcode     string
	Description string
	Status      string
	SizeValue   string
	SizeUnit    string
	ExpiryDay   string
}

// IdentityOf derives the identity from a unit. Text attributes are trimmed
// and case folded, the size is compared numerically (so "0.50" and "0.5"
// match), and the expiry collapses to day granularity in UTC.
func IdentityOf(p models.Product) Identity {
	return Identity{
		Name:        foldAttr(p.Name),
		Category:    foldAttr(string(p.Category)),
		Subcategory: foldAttrPtr(p.Subcategory),
		Brand:       foldAttrPtr(p.Brand),
		Campaign:    foldAttrPtr(p.Campaign),
		Donor:       foldAttrPtr(p.Donor),
		PartnerName: foldAttrPtr(p.PartnerName),
		Barcode:     foldAttrPtr(p.Barcode),
		Description: foldAttrPtr(p.Description),
		Status:      foldAttr(string(p.Status)),
		SizeValue:   normalizeSize(p.SizeValue),
		SizeUnit:    foldAttrPtr(p.SizeUnit),
		ExpiryDay:   expiryDay(p.ExpiryDate),
	}
}

// Key renders the identity as a stable string usable as a map key or a
// grouping handle in API responses. Attributes are length prefixed before
// hashing so that attribute values containing any separator cannot collide
// across field boundaries.
func (i Identity) Key() string {
	h := sha256.New()
	for _, attr := range []string{
		i.Name,
		i.Category,
		i.Subcategory,
		i.Brand,
		i.Campaign,
		i.Donor,
		i.PartnerName,
		i.Barcode,
		i.Description,
		i.Status,
		i.SizeValue,
		i.SizeUnit,
		i.ExpiryDay,
	} {
		fmt.Fprintf(h, "%d:%s;", len(attr), attr)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GroupByIdentity buckets units under their identity, preserving the input
// order inside each bucket.
func GroupByIdentity(units []models.Product) map[Identity][]models.Product {
	groups := make(map[Identity][]models.Product)
	for _, unit := range units {
		id := IdentityOf(unit)
		groups[id] = append(groups[id], unit)
	}
	return groups
}

func foldAttr(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func foldAttrPtr(value *string) string {
	if value == nil {
		return ""
	}
	return foldAttr(*value)
}

func normalizeSize(value decimal.Decimal) string {
	// trailing zeros would split "0.50" and "0.5" into distinct identities
	return value.String()
}

func expiryDay(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format("2006-01-02")
}
