// Package pagination implements the keyset cursors used by the apoiado,
// product and basket listings. A cursor is the (created_at, id) pair of the
// last row of the previous page, encoded as an opaque token. Cursors are
// never persisted, so the token format can change between releases.
package pagination

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/lojasocial-app/lojasocial-backend/pkg/errors"
)

const (
	// DefaultLimit is the page size when the caller does not send one.
	DefaultLimit = 20
	// MaxLimit caps the page size of any listing endpoint.
	MaxLimit = 100

	cursorSeparator = ","
)

// Params are the pagination inputs forwarded from the query string.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the decoded keyset position.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// NormalizeLimit clamps the requested page size into [1, MaxLimit],
// substituting DefaultLimit for missing or non-positive values.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer adds one row to the normalized limit so repositories can
// tell whether a next page exists without a second query.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor serializes the keyset position into an opaque token safe for
// query strings.
func EncodeCursor(cursor Cursor) string {
	raw := cursor.CreatedAt.UTC().Format(time.RFC3339Nano) + cursorSeparator + cursor.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor decodes a token produced by EncodeCursor. An empty token means
// "first page" and yields a nil cursor. Malformed tokens are reported as
// validation errors so the API answers 400 rather than 500.
func ParseCursor(token string) (*Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed cursor")
	}
	createdAtPart, idPart, ok := strings.Cut(string(raw), cursorSeparator)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "malformed cursor")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, createdAtPart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed cursor timestamp")
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed cursor id")
	}
	return &Cursor{CreatedAt: createdAt, ID: id}, nil
}
