package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lojasocial-app/lojasocial-backend/api/responses"
	"github.com/lojasocial-app/lojasocial-backend/api/validators"
	apoiadosvc "github.com/lojasocial-app/lojasocial-backend/internal/apoiados"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	pkgerrors "github.com/lojasocial-app/lojasocial-backend/pkg/errors"
	"github.com/lojasocial-app/lojasocial-backend/pkg/logger"
)

type createApoiadoRequest struct {
	Name          string  `json:"name" validate:"required"`
	StudentNumber *string `json:"student_number,omitempty"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string `json:"phone,omitempty"`
	Campus        *string `json:"campus,omitempty"`
	HouseholdSize int     `json:"household_size" validate:"required,min=1"`
	Notes         *string `json:"notes,omitempty"`
}

type updateApoiadoRequest struct {
	Name          *string `json:"name,omitempty"`
	StudentNumber *string `json:"student_number,omitempty"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string `json:"phone,omitempty"`
	Campus        *string `json:"campus,omitempty"`
	HouseholdSize *int    `json:"household_size,omitempty" validate:"omitempty,min=1"`
	Notes         *string `json:"notes,omitempty"`
}

type setApoiadoStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateApoiado registers a new beneficiary.
func CreateApoiado(svc apoiadosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createApoiadoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		apoiado, err := svc.CreateApoiado(r.Context(), apoiadosvc.CreateInput{
			Name:          payload.Name,
			StudentNumber: payload.StudentNumber,
			Email:         payload.Email,
			Phone:         payload.Phone,
			Campus:        payload.Campus,
			HouseholdSize: payload.HouseholdSize,
			Notes:         payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, apoiado)
	}
}

// UpdateApoiado applies partial profile changes.
func UpdateApoiado(svc apoiadosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apoiadoID, err := validators.PathUUID(chi.URLParam(r, "apoiadoID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateApoiadoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		apoiado, err := svc.UpdateApoiado(r.Context(), apoiadoID, apoiadosvc.UpdateInput{
			Name:          payload.Name,
			StudentNumber: payload.StudentNumber,
			Email:         payload.Email,
			Phone:         payload.Phone,
			Campus:        payload.Campus,
			HouseholdSize: payload.HouseholdSize,
			Notes:         payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, apoiado)
	}
}

// SetApoiadoStatus activates or suspends a beneficiary.
func SetApoiadoStatus(svc apoiadosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apoiadoID, err := validators.PathUUID(chi.URLParam(r, "apoiadoID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setApoiadoStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseApoiadoStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		apoiado, err := svc.SetStatus(r.Context(), apoiadoID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, apoiado)
	}
}

// GetApoiado returns one beneficiary profile.
func GetApoiado(svc apoiadosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apoiadoID, err := validators.PathUUID(chi.URLParam(r, "apoiadoID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		apoiado, err := svc.GetApoiado(r.Context(), apoiadoID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, apoiado)
	}
}

// ListApoiados returns a cursor page of beneficiaries.
func ListApoiados(svc apoiadosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := apoiadosvc.ListFilters{
			Query: strings.TrimSpace(r.URL.Query().Get("q")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseApoiadoStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}

		result, err := svc.ListApoiados(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
