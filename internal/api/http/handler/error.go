package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chatline/chatline-server/internal/apierrors"
	"github.com/chatline/chatline-server/internal/model"
)

// errorResponse is the JSON error envelope returned by every endpoint.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func statusForKind(kind apierrors.Kind) int {
	switch kind {
	case apierrors.KindInvalidArgument:
		return http.StatusBadRequest
	case apierrors.KindUnauthenticated:
		return http.StatusUnauthorized
	case apierrors.KindNotFound:
		return http.StatusNotFound
	case apierrors.KindUploadError:
		return http.StatusBadGateway
	case apierrors.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, statusForKind(apiErr.Kind), errorResponse{
			Error:  string(apiErr.Kind),
			Detail: apiErr.Message,
		})
		return
	}

	if errors.Is(err, model.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:  string(apierrors.KindNotFound),
			Detail: "not found",
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:  "internal",
		Detail: "internal server error",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
