package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/persistence/file"
	"github.com/contractpulse/flowdesigner/pkg/schema"
	"github.com/contractpulse/flowdesigner/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(tempDir string) *fiber.App {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	persistence := file.NewPersistence(tempDir)
	editor := services.NewEditor(persistence.WorkflowRepository(), schema.MustNewRegistry(), services.WithLogger(logger))

	return NewAPI(logger, persistence, editor).App()
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return body
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t.TempDir())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ContractPulse Workflow Designer", string(body))
}

func TestAPI_HealthCheck(t *testing.T) {
	app := setupTestApp(t.TempDir())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.NoError(t, err)

	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)

	body = readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)
}

func TestAPI_GetWorkflows_Empty(t *testing.T) {
	app := setupTestApp(t.TempDir())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/workflows", nil))
	require.NoError(t, err)

	body := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]any
	require.NoError(t, json.Unmarshal(body, &result))
	assert.InDelta(t, 0, result["total_count"], 0)
	assert.Empty(t, result["workflows"])
}

func TestAPI_CreateFromTemplateAndPublish(t *testing.T) {
	app := setupTestApp(t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewBufferString(`{"name":"NDA fast track","template_id":"standard-approval"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	body := readBody(t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created models.Workflow
	require.NoError(t, json.Unmarshal(body, &created))

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/workflows/"+created.ID+"/publish", nil))
	require.NoError(t, err)

	body = readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/workflows?status=published", nil))
	require.NoError(t, err)

	body = readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), created.ID)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/palette/templates?category=finance", nil))
	require.NoError(t, err)

	body = readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "high-value")
	assert.NotContains(t, string(body), "standard-approval")
}
