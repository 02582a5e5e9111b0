package services

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lib/pq"

	"github.com/ksfraser/WealthSystem-sub002/models"
)

// WriteErrResponse writes a JSON response with a specific status code
func WriteErrResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// HandleErrResponse handles pq.Error and writes JSON error responses
func HandleErrResponse(w http.ResponseWriter, statusCode int, err error) {
	var pqErr *pq.Error
	var response models.Response

	if errors.As(err, &pqErr) {
		response = models.Response{
			Success:      0,
			ErrorCode:    pqErr.Code.Name(),
			ErrorDetails: pqErr.Message,
		}
	} else {
		response = models.Response{
			Success:      0,
			ErrorDetails: err.Error(),
		}
	}

	WriteErrResponse(w, statusCode, response)
}

// HandleSuccessResponse writes a JSON success envelope with optional headers.
func HandleSuccessResponse(w http.ResponseWriter, statusCode int, headers map[string]string, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	for key, value := range headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(statusCode)
	if response == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
