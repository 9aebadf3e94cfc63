package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kasa/internal/errors"
	"kasa/internal/middleware"
	"kasa/internal/uuid"
)

// ErrorResponse is the error envelope every endpoint returns on failure.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// parsePathID reads a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// parseDateQuery accepts RFC 3339 timestamps or plain YYYY-MM-DD dates. A plain
// date used as an upper bound extends to the end of that day.
func parseDateQuery(c *gin.Context, key string, endOfDay bool) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, key+" must be RFC 3339 or YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parseDecimalQuery(c *gin.Context, key string) (*decimal.Decimal, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, key+" must be a number")
	}
	return &d, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}
