package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lojasocial-app/lojasocial-backend/api/responses"
	"github.com/lojasocial-app/lojasocial-backend/api/validators"
	productsvc "github.com/lojasocial-app/lojasocial-backend/internal/products"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	pkgerrors "github.com/lojasocial-app/lojasocial-backend/pkg/errors"
	"github.com/lojasocial-app/lojasocial-backend/pkg/logger"
)

type intakeDonationRequest struct {
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Subcategory *string `json:"subcategory,omitempty"`
	Brand       *string `json:"brand,omitempty"`
	Donor       *string `json:"donor,omitempty"`
	PartnerName *string `json:"partner_name,omitempty"`
	Campaign    *string `json:"campaign,omitempty"`
	Barcode     *string `json:"barcode,omitempty"`
	ExpiryDate  *string `json:"expiry_date,omitempty"`
	SizeValue   *string `json:"size_value,omitempty"`
	SizeUnit    *string `json:"size_unit,omitempty"`
	Description *string `json:"description,omitempty"`
	Quantity    int     `json:"quantity" validate:"required,min=1"`
}

type updateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Subcategory *string `json:"subcategory,omitempty"`
	Brand       *string `json:"brand,omitempty"`
	Donor       *string `json:"donor,omitempty"`
	PartnerName *string `json:"partner_name,omitempty"`
	Campaign    *string `json:"campaign,omitempty"`
	Barcode     *string `json:"barcode,omitempty"`
	ExpiryDate  *string `json:"expiry_date,omitempty"`
	SizeValue   *string `json:"size_value,omitempty"`
	SizeUnit    *string `json:"size_unit,omitempty"`
	Description *string `json:"description,omitempty"`
}

// IntakeDonation registers donated units. Quantity expands into individual
// rows on the service side.
func IntakeDonation(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID, err := requireStaffID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload intakeDonationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toIntakeInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		units, err := svc.IntakeDonation(r.Context(), staffID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"products": units,
			"count":    len(units),
		})
	}
}

func (p intakeDonationRequest) toIntakeInput() (productsvc.IntakeInput, error) {
	category, err := enums.ParseProductCategory(strings.TrimSpace(p.Category))
	if err != nil {
		return productsvc.IntakeInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}

	input := productsvc.IntakeInput{
		Name:        p.Name,
		Category:    category,
		Subcategory: p.Subcategory,
		Brand:       p.Brand,
		Donor:       p.Donor,
		PartnerName: p.PartnerName,
		Campaign:    p.Campaign,
		Barcode:     p.Barcode,
		SizeUnit:    p.SizeUnit,
		Description: p.Description,
		Quantity:    p.Quantity,
	}

	if p.ExpiryDate != nil {
		expiry, err := parseDate(*p.ExpiryDate)
		if err != nil {
			return productsvc.IntakeInput{}, err
		}
		input.ExpiryDate = expiry
	}
	if p.SizeValue != nil {
		size, err := parseSize(*p.SizeValue)
		if err != nil {
			return productsvc.IntakeInput{}, err
		}
		input.SizeValue = *size
	}

	return input, nil
}

// UpdateProduct edits a unit still in the available pool.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func (p updateProductRequest) toUpdateInput() (productsvc.UpdateInput, error) {
	input := productsvc.UpdateInput{
		Name:        p.Name,
		Subcategory: p.Subcategory,
		Brand:       p.Brand,
		Donor:       p.Donor,
		PartnerName: p.PartnerName,
		Campaign:    p.Campaign,
		Barcode:     p.Barcode,
		SizeUnit:    p.SizeUnit,
		Description: p.Description,
	}

	if p.Category != nil {
		category, err := enums.ParseProductCategory(strings.TrimSpace(*p.Category))
		if err != nil {
			return productsvc.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}
	if p.ExpiryDate != nil {
		expiry, err := parseDate(*p.ExpiryDate)
		if err != nil {
			return productsvc.UpdateInput{}, err
		}
		input.ExpiryDate = expiry
	}
	if p.SizeValue != nil {
		size, err := parseSize(*p.SizeValue)
		if err != nil {
			return productsvc.UpdateInput{}, err
		}
		input.SizeValue = size
	}

	return input, nil
}

// RemoveProduct takes an available unit out of circulation.
func RemoveProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// GetProduct returns one unit with its reservation state.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ListProducts returns a filtered cursor page of units.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := productsvc.ListFilters{
			Donor:    strings.TrimSpace(r.URL.Query().Get("donor")),
			Campaign: strings.TrimSpace(r.URL.Query().Get("campaign")),
			Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseProductStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			category, err := enums.ParseProductCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category filter"))
				return
			}
			filters.Category = &category
		}

		result, err := svc.ListProducts(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProductAvailability returns the available pool grouped by identical units.
func ProductAvailability(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := svc.AvailabilityGroups(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"groups": groups})
	}
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if value, err := time.Parse(time.RFC3339, raw); err == nil {
		return &value, nil
	}
	value, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date")
	}
	return &value, nil
}

func parseSize(raw string) (*decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size value")
	}
	return &value, nil
}
