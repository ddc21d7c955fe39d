package apierror

import (
	"encoding/json"
	"net/http"

	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

// Body is the JSON document written for every failed request
type Body struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Path      string            `json:"path,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Timestamp string            `json:"timestamp"`
	Fields    map[string]string `json:"fields,omitempty"`
	Details   string            `json:"details,omitempty"`
}

// NewBody renders e for a client. Causes are only included when
// exposeDetails is set.
func NewBody(e *Error, path, requestID, timestamp string, exposeDetails bool) Body {
	body := Body{
		Success:   false,
		Error:     e.Code,
		Code:      e.Code,
		Message:   e.Message,
		Path:      path,
		RequestID: requestID,
		Timestamp: timestamp,
		Fields:    e.Fields,
	}
	if exposeDetails && e.Err != nil {
		body.Details = e.Err.Error()
	}
	return body
}

// WriteJSON writes status and v as a JSON response
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON+"; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
