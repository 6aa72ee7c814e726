package audits

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() (*fiber.App, *Service) {
	svc, _, _ := newTestService()
	app := fiber.New()
	h := NewHandler(svc)
	app.Post("/v1/audits", h.HandleCreateAudit)
	app.Get("/v1/audits/:auditId", h.HandleGetAudit)
	app.Get("/v1/audits/:auditId/progress", h.HandleGetProgress)
	return app, svc
}

func postAudit(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/audits", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHandleCreateAudit(t *testing.T) {
	app, _ := newTestApp()

	resp := postAudit(t, app, `{"url":"https://example.com","user_id":"user-1"}`)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["audit_id"])
	assert.Equal(t, "pending", body["status"])
}

func TestHandleCreateAuditValidation(t *testing.T) {
	app, _ := newTestApp()

	resp := postAudit(t, app, `{"user_id":"user-1"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postAudit(t, app, `{"url":"notaurl","user_id":"user-1"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postAudit(t, app, `{"url":"https://example.com","user_id":"ghost"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleCreateAuditPaymentRequired(t *testing.T) {
	app, _ := newTestApp()

	// Burn through the seeded credits, then one more.
	for i := 0; i < 3; i++ {
		resp := postAudit(t, app, fmt.Sprintf(`{"url":"https://example.com/p%d","user_id":"user-1"}`, i))
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	}
	resp := postAudit(t, app, `{"url":"https://example.com/again","user_id":"user-1"}`)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)
}

func TestHandleGetAuditAndProgress(t *testing.T) {
	app, svc := newTestApp()

	rec, err := svc.Submit(context.Background(), "user-1", "https://example.com")
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/audits/"+rec.ID, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/v1/audits/"+rec.ID+"/progress", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "queued", body["stage"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/v1/audits/missing", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
