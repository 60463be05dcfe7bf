package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikezucc/spendingtracker/internal/chart"
	"github.com/mikezucc/spendingtracker/internal/core"
	applog "github.com/mikezucc/spendingtracker/internal/log"
	"github.com/mikezucc/spendingtracker/internal/store"
)

const sampleCSV = `Transaction Date,Amount,Description,Category
01/01/2024,-10,Coffee,Dining
01/02/2024,3,Refund,Shopping
01/03/2024,-5,Snack,Dining
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := store.Open(context.Background(), store.NewMemorySlot())
	logger := applog.New(applog.DefaultConfig())
	s := NewServer(":0", st, logger, time.Minute)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func uploadFiles(t *testing.T, s *Server, files map[string]string) uploadResult {
	t.Helper()
	body, contentType := multipartBody(t, files)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := do(s, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result uploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func chartData(t *testing.T, s *Server, views string) chart.Payload {
	t.Helper()
	rec := do(s, httptest.NewRequest(http.MethodGet, "/chart-data?views="+views, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload chart.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(s, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChartDataEmptyStore(t *testing.T) {
	s := newTestServer(t)

	payload := chartData(t, s, "cumulative")
	assert.Empty(t, payload.Labels)
	require.Len(t, payload.Datasets, 1)
	assert.Equal(t, chart.NoDataLabel, payload.Datasets[0].Label)
}

func TestUploadThenChartData(t *testing.T) {
	s := newTestServer(t)

	result := uploadFiles(t, s, map[string]string{
		"statement.csv": sampleCSV,
		"notes.txt":     "not a statement",
	})
	assert.Equal(t, 1, result.FilesAccepted)
	assert.Equal(t, 1, result.FilesSkipped)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 3, result.Added)

	payload := chartData(t, s, "cumulative")
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, payload.Labels)
	require.Len(t, payload.Datasets, 1)
	assert.Equal(t, []float64{10, 7, 12}, payload.Datasets[0].Data)

	tip, ok := payload.Tooltips["2024-01-01"]
	require.True(t, ok)
	assert.Equal(t, "Total: $10.00", tip.Headline)
}

func TestUploadIsIdempotent(t *testing.T) {
	s := newTestServer(t)

	first := uploadFiles(t, s, map[string]string{"statement.csv": sampleCSV})
	assert.Equal(t, 3, first.Added)

	second := uploadFiles(t, s, map[string]string{"statement.csv": sampleCSV})
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 3, s.store.Len())
}

func TestUploadCaseInsensitiveExtension(t *testing.T) {
	s := newTestServer(t)

	result := uploadFiles(t, s, map[string]string{"EXPORT.CSV": sampleCSV})
	assert.Equal(t, 1, result.FilesAccepted)
	assert.Equal(t, 3, result.Added)
}

func TestClearResetsEverything(t *testing.T) {
	s := newTestServer(t)
	uploadFiles(t, s, map[string]string{"statement.csv": sampleCSV})

	rec := do(s, httptest.NewRequest(http.MethodPost, "/clear", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, s.store.Len())

	payload := chartData(t, s, "cumulative,daily,weekly")
	require.Len(t, payload.Datasets, 1)
	assert.Equal(t, chart.NoDataLabel, payload.Datasets[0].Label)
}

func TestChartDataCacheInvalidation(t *testing.T) {
	s := newTestServer(t)

	// Prime the cache with the empty projection, then mutate the store.
	payload := chartData(t, s, "cumulative")
	assert.Equal(t, chart.NoDataLabel, payload.Datasets[0].Label)

	uploadFiles(t, s, map[string]string{"statement.csv": sampleCSV})

	payload = chartData(t, s, "cumulative")
	assert.Equal(t, "Cumulative balance", payload.Datasets[0].Label)
}

func TestTransactionsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/transactions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	uploadFiles(t, s, map[string]string{"statement.csv": sampleCSV})

	rec = do(s, httptest.NewRequest(http.MethodGet, "/transactions", nil))
	var txns []core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txns))
	require.Len(t, txns, 3)
	assert.Equal(t, "2024-01-01", txns[0].Date)
	assert.Equal(t, 10.0, txns[0].Amount)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/upload", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/clear", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(s, httptest.NewRequest(http.MethodPost, "/chart-data", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/transactions", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
