package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/lojasocial-app/lojasocial-backend/api/middleware"
	"github.com/lojasocial-app/lojasocial-backend/api/validators"
	pkgerrors "github.com/lojasocial-app/lojasocial-backend/pkg/errors"
	"github.com/lojasocial-app/lojasocial-backend/pkg/pagination"
)

func requireStaffID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.StaffIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "staff context missing")
	}
	staffID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid staff id")
	}
	return staffID, nil
}

func optionalStaffID(r *http.Request) *uuid.UUID {
	raw := middleware.StaffIDFromContext(r.Context())
	if raw == "" {
		return nil
	}
	staffID, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &staffID
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
