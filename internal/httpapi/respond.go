package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"storefront-core/internal/apperror"
	"storefront-core/internal/identity"
	"storefront-core/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L().Error("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleServiceError maps service errors onto HTTP statuses by kind.
// Unclassified errors are logged and hidden behind a generic 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, identity.ErrUnauthenticated) {
		respondError(w, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error())
		return
	}

	kind := apperror.KindOf(err)
	switch kind {
	case apperror.KindNotFound:
		respondError(w, http.StatusNotFound, kind.String(), err.Error())
	case apperror.KindInvalidArgument:
		respondError(w, http.StatusBadRequest, kind.String(), err.Error())
	case apperror.KindInvalidState:
		respondError(w, http.StatusUnprocessableEntity, kind.String(), err.Error())
	case apperror.KindConflict:
		respondError(w, http.StatusConflict, kind.String(), err.Error())
	case apperror.KindPermissionDenied:
		respondError(w, http.StatusForbidden, kind.String(), err.Error())
	default:
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

// caller returns the authenticated user, or the zero User for anonymous
// requests. Services decide whether anonymous is acceptable.
func caller(r *http.Request) identity.User {
	u, _ := identity.FromContext(r.Context())
	return u
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return false
	}
	return true
}

func invalidID(w http.ResponseWriter, name string) {
	respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", name+" must be a positive integer")
}
