package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"entitycore/src/domain"
	"entitycore/src/domain/model"
	"entitycore/src/infra/postgres"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
}

// decodeAttributes reads a JSON object body. Whole numbers become int64 so
// they compare equal to the integers returned by the database drivers.
func decodeAttributes(w http.ResponseWriter, r *http.Request) (*model.Attributes, error) {
	attrs := model.NewAttributes()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(attrs); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", domain.ErrInvalidArgument)
	}

	attrs.Each(func(name string, value any) {
		if number, ok := value.(float64); ok && number == math.Trunc(number) && math.Abs(number) < 1<<53 {
			attrs.Set(name, int64(number))
		}
	})
	return attrs, nil
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id format: %w", domain.ErrInvalidArgument)
	}
	return id, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case postgres.IsUniqueViolation(err):
		s.writeJSON(w, http.StatusConflict, ErrorResponse{Error: "a user with the same unique field already exists"})
	case errors.Is(err, domain.ErrEntityNotFound):
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: domain.ErrEntityNotFound.Error()})
	default:
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: domain.ErrUnavailableServer.Error()})
	}
}
