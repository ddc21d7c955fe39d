package hotel

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leslieo2/hotel-booking-mock/internal/apierror"
	"github.com/leslieo2/hotel-booking-mock/internal/router"
)

func newTestRouter(t *testing.T) *router.Router {
	t.Helper()
	svc, _, _ := newTestService(t)
	r := router.New(func(w http.ResponseWriter, req *http.Request, err error) {
		e := apierror.From(err)
		apierror.WriteJSON(w, e.Status, apierror.NewBody(e, req.URL.Path, "", "", false))
	})
	r.Mount("/api/hotel", NewHandler(svc, zap.NewNop()))
	return r
}

func call(t *testing.T, r http.Handler, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestHandler_Flow(t *testing.T) {
	r := newTestRouter(t)

	status, body := call(t, r, http.MethodPost, "/api/hotel/search",
		`{"city":"London","check_in":"2026-05-01","check_out":"2026-05-03","guests":2}`)
	require.Equal(t, http.StatusOK, status, body)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 2, data["count"])

	status, body = call(t, r, http.MethodPost, "/api/hotel/prebook",
		`{"hotel_id":"htl-lon-002","room_id":"rm-lon-002-twn","check_in":"2026-05-01","check_out":"2026-05-03","guests":2}`)
	require.Equal(t, http.StatusCreated, status, body)
	prebookID := body["prebook"].(map[string]interface{})["id"].(string)

	status, body = call(t, r, http.MethodPost, "/api/hotel/book",
		`{"prebook_id":"`+prebookID+`","guest":{"first_name":"Grace","last_name":"Hopper","email":"grace@example.com"}}`)
	require.Equal(t, http.StatusCreated, status, body)
	bookingID := body["booking"].(map[string]interface{})["id"].(string)

	status, body = call(t, r, http.MethodPut, "/api/hotel/edit",
		`{"booking_id":"`+bookingID+`","guest":{"email":"grace.hopper@example.com"}}`)
	require.Equal(t, http.StatusOK, status, body)
	guest := body["booking"].(map[string]interface{})["guest"].(map[string]interface{})
	assert.Equal(t, "grace.hopper@example.com", guest["email"])
	assert.Equal(t, "Grace", guest["first_name"])

	status, body = call(t, r, http.MethodPost, "/api/hotel/cancel", `{"booking_id":"`+bookingID+`"}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, StatusCancelled, body["booking"].(map[string]interface{})["status"])

	status, body = call(t, r, http.MethodGet, "/api/hotel/bookings/"+bookingID, "")
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, StatusCancelled, body["booking"].(map[string]interface{})["status"])
}

func TestHandler_Errors(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name: "search missing fields", method: http.MethodPost, path: "/api/hotel/search",
			body: `{"city":"Paris"}`, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_FAILED",
		},
		{
			name: "search bad date format", method: http.MethodPost, path: "/api/hotel/search",
			body:       `{"city":"Paris","check_in":"01/05/2026","check_out":"2026-05-03","guests":1}`,
			wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_FAILED",
		},
		{
			name: "book invalid guest email", method: http.MethodPost, path: "/api/hotel/book",
			body:       `{"prebook_id":"p","guest":{"first_name":"A","last_name":"B","email":"nope"}}`,
			wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_FAILED",
		},
		{
			name: "book unknown prebook", method: http.MethodPost, path: "/api/hotel/book",
			body:       `{"prebook_id":"p","guest":{"first_name":"A","last_name":"B","email":"a@b.example"}}`,
			wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND",
		},
		{
			name: "edit without changes", method: http.MethodPut, path: "/api/hotel/edit",
			body: `{"booking_id":"b"}`, wantStatus: http.StatusBadRequest, wantCode: "BAD_REQUEST",
		},
		{
			name: "unknown booking", method: http.MethodGet, path: "/api/hotel/bookings/does-not-exist",
			wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND",
		},
		{
			name: "search with GET is not routed", method: http.MethodGet, path: "/api/hotel/search",
			wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, false, body["success"])
		})
	}
}
