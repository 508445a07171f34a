package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/storyverse/internal/companion"
	"github.com/rpggio/storyverse/internal/domain/analytics"
	"github.com/rpggio/storyverse/internal/domain/favorite"
	"github.com/rpggio/storyverse/internal/domain/remix"
	"github.com/rpggio/storyverse/internal/domain/universe"
	"github.com/rpggio/storyverse/internal/gateway"
	"github.com/rpggio/storyverse/internal/notify"
	"github.com/rpggio/storyverse/internal/repository"
	"github.com/rpggio/storyverse/internal/search"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, universe.ErrUniverseNotFound):
		return &APIError{Code: "UNIVERSE_NOT_FOUND", Message: "universe not found", RecoveryHint: "Call list_universes for valid ids"}
	case errors.Is(err, remix.ErrRemixNotFound):
		return &APIError{Code: "REMIX_NOT_FOUND", Message: "remix not found", RecoveryHint: "Call list_remixes for valid ids"}
	case errors.Is(err, favorite.ErrFavoriteNotFound):
		return &APIError{Code: "FAVORITE_NOT_FOUND", Message: "universe is not a favorite"}
	case errors.Is(err, analytics.ErrReportNotFound):
		return &APIError{Code: "REPORT_NOT_FOUND", Message: "no analytics report", RecoveryHint: "Call fetch_analytics first"}
	case errors.Is(err, companion.ErrRecommendationNotFound):
		return &APIError{Code: "RECOMMENDATION_NOT_FOUND", Message: "recommendation not found"}
	case errors.Is(err, search.ErrInvalidFilter):
		return &APIError{Code: "INVALID_FILTER", Message: err.Error(), RecoveryHint: "Check types, min_rating and sort_by"}
	case errors.Is(err, universe.ErrInvalidInput),
		errors.Is(err, remix.ErrInvalidInput),
		errors.Is(err, favorite.ErrInvalidInput),
		errors.Is(err, analytics.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidInput),
		errors.Is(err, notify.ErrMessageRequired):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, repository.ErrConflict):
		return &APIError{Code: "CONFLICT", Message: "entity already exists"}
	case errors.Is(err, gateway.ErrUnavailable):
		return &APIError{Code: "UNAVAILABLE", Message: "backend unavailable after retries", RecoveryHint: "Retry later"}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &APIError{Code: "CANCELED", Message: err.Error()}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
