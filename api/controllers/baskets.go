package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lojasocial-app/lojasocial-backend/api/responses"
	"github.com/lojasocial-app/lojasocial-backend/api/validators"
	basketsvc "github.com/lojasocial-app/lojasocial-backend/internal/baskets"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	pkgerrors "github.com/lojasocial-app/lojasocial-backend/pkg/errors"
	"github.com/lojasocial-app/lojasocial-backend/pkg/logger"
)

type createBasketRequest struct {
	ApoiadoID   string   `json:"apoiado_id" validate:"required,uuid"`
	ProductIDs  []string `json:"product_ids" validate:"required,min=1,dive,uuid"`
	ScheduledAt string   `json:"scheduled_at" validate:"omitempty"`
	Origin      string   `json:"origin" validate:"required"`
	RequestID   *string  `json:"request_id,omitempty" validate:"omitempty,uuid"`
	Recurring   bool     `json:"recurring"`
	Notes       *string  `json:"notes,omitempty"`
}

type rescheduleBasketRequest struct {
	NewDate       string `json:"new_date" validate:"required"`
	CountsAsFault bool   `json:"counts_as_fault"`
}

type setBasketStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type editBasketProductsRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=1,dive,uuid"`
}

// CreateBasket opens a basket and reserves its products.
func CreateBasket(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createBasketRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput(optionalStaffID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		basket, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, basket)
	}
}

func (p createBasketRequest) toCreateInput(staffID *uuid.UUID) (basketsvc.CreateInput, error) {
	apoiadoID, err := uuid.Parse(p.ApoiadoID)
	if err != nil {
		return basketsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid apoiado id")
	}

	productIDs, err := parseUUIDList(p.ProductIDs)
	if err != nil {
		return basketsvc.CreateInput{}, err
	}

	// an omitted scheduled date means "deliver now", the service fills it in
	scheduledAt, err := parseDate(p.ScheduledAt)
	if err != nil {
		return basketsvc.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid scheduled date")
	}

	origin, err := enums.ParseBasketOrigin(strings.TrimSpace(p.Origin))
	if err != nil {
		return basketsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid origin")
	}

	input := basketsvc.CreateInput{
		ApoiadoID:  apoiadoID,
		StaffID:    staffID,
		ProductIDs: productIDs,
		Origin:     origin,
		Recurring:  p.Recurring,
		Notes:      p.Notes,
	}
	if scheduledAt != nil {
		input.ScheduledAt = *scheduledAt
	}

	if p.RequestID != nil {
		requestID, err := uuid.Parse(*p.RequestID)
		if err != nil {
			return basketsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request id")
		}
		input.RequestID = &requestID
	}

	return input, nil
}

// DeliverBasket hands the basket over and finalizes its units.
func DeliverBasket(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		basketID, staffID, err := basketActionParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		basket, err := svc.Deliver(r.Context(), basketID, staffID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, basket)
	}
}

// CancelBasket aborts the basket and returns its units to the pool.
func CancelBasket(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		basketID, staffID, err := basketActionParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		basket, err := svc.Cancel(r.Context(), basketID, staffID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, basket)
	}
}

// RescheduleBasket moves the pickup date, optionally recording a fault.
func RescheduleBasket(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		basketID, staffID, err := basketActionParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rescheduleBasketRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		newDate, err := parseDate(payload.NewDate)
		if err != nil || newDate == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid new date"))
			return
		}

		basket, err := svc.Reschedule(r.Context(), basketsvc.RescheduleInput{
			BasketID:      basketID,
			NewDate:       *newDate,
			CountsAsFault: payload.CountsAsFault,
			StaffID:       staffID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, basket)
	}
}

// MarkBasketNotCollected closes an overdue basket as a missed pickup.
func MarkBasketNotCollected(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		basketID, staffID, err := basketActionParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		basket, err := svc.MarkNotCollected(r.Context(), basketID, staffID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, basket)
	}
}

// SetBasketPreparation moves the basket between preparation stages.
func SetBasketPreparation(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		basketID, staffID, err := basketActionParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setBasketStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseBasketStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		basket, err := svc.SetPreparation(r.Context(), basketID, target, staffID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, basket)
	}
}

// EditBasketProducts replaces the basket's product list.
func EditBasketProducts(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		basketID, staffID, err := basketActionParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload editBasketProductsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productIDs, err := parseUUIDList(payload.ProductIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		basket, err := svc.EditProducts(r.Context(), basketsvc.EditProductsInput{
			BasketID:   basketID,
			ProductIDs: productIDs,
			StaffID:    staffID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, basket)
	}
}

// GetBasket returns one basket with its product list.
func GetBasket(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		basketID, err := validators.PathUUID(chi.URLParam(r, "basketID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		basket, err := svc.Get(r.Context(), basketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, basket)
	}
}

// ListBaskets returns a filtered cursor page of baskets.
func ListBaskets(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := basketsvc.ListFilters{}
		apoiadoID, err := validators.ParseQueryUUID(r, "apoiado_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.ApoiadoID = apoiadoID

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseBasketStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("origin")); raw != "" {
			origin, err := enums.ParseBasketOrigin(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid origin filter"))
				return
			}
			filters.Origin = &origin
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("recurring")); raw != "" {
			recurring := raw == "true"
			filters.Recurring = &recurring
		}

		result, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func basketActionParams(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	basketID, err := validators.PathUUID(chi.URLParam(r, "basketID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	staffID, err := requireStaffID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return basketID, staffID, nil
}

func parseUUIDList(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
