package httpadapter

import (
	"net/http"

	"github.com/McSavage/edgar-rag/internal/core/domain"
)

// mapErrorToHTTPStatus translates pipeline failures. A failed retrieval
// dependency is a bad gateway; a synthesis or generic transient failure is
// service unavailable so clients know to retry.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrQuantitativeRetrieval),
		domain.IsKind(err, domain.ErrQualitativeRetrieval):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrSynthesis),
		domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
