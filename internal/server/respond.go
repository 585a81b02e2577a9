package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Veraticus/homehub/internal/common"
)

const maxBodyBytes = 1 << 20

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		requestID, _ := RequestIDFromContext(r.Context())
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", requestID, "error", err)
		message = "internal error"
	}
	s.writeJSON(w, status, map[string]any{"ok": false, "error": message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON request body into dst. An empty body leaves dst
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return common.Invalid("body", "must be a JSON object")
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.Invalid("id", "must be a positive integer")
	}
	return id, nil
}

// flexString accepts a JSON string, number or boolean and keeps its text.
// Form-style clients send numbers either way.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("unsupported value %s", raw)
	}
	*f = flexString(strconv.FormatBool(b))
	return nil
}

func (f flexString) String() string {
	return string(f)
}

func (f flexString) Int(field string) (int, error) {
	if strings.TrimSpace(string(f)) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(f)))
	if err != nil {
		return 0, common.Invalid(field, "must be an integer")
	}
	return n, nil
}

func optionalString(f *flexString) *string {
	if f == nil {
		return nil
	}
	s := f.String()
	return &s
}

// actor names the user performing a mutation: the body field when given,
// otherwise the X-Hub-User header.
func actor(r *http.Request, fromBody string) string {
	if u := strings.TrimSpace(fromBody); u != "" {
		return u
	}
	return strings.TrimSpace(r.Header.Get("X-Hub-User"))
}
