package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/lojasocial-app/lojasocial-backend/pkg/logger"
)

const (
	staffIDHeader   = "X-Staff-Id"
	staffRoleHeader = "X-Staff-Role"
)

// StaffContext lifts the staff identity headers set by the SSO proxy into the
// request context. Requests without them still pass; individual handlers
// decide whether an actor is required.
func StaffContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if raw := strings.TrimSpace(r.Header.Get(staffIDHeader)); raw != "" {
				if staffID, err := uuid.Parse(raw); err == nil {
					ctx = WithStaffID(ctx, staffID.String())
					if logg != nil {
						ctx = logg.WithField(ctx, "staff_id", staffID.String())
					}
				}
			}
			if role := strings.TrimSpace(r.Header.Get(staffRoleHeader)); role != "" {
				ctx = WithRole(ctx, role)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
