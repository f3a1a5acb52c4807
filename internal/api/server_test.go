package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocleanse/adapters/artifactstore"
	"gocleanse/adapters/cleaning"
	"gocleanse/adapters/stats/lookup"
	"gocleanse/app"
	"gocleanse/domain/core"
	"gocleanse/internal/logging"
	"gocleanse/internal/upload"
)

const outlierCSV = "id,amount\n1,10\n2,12\n3,11\n4,13\n5,10\n6,12\n7,11\n8,13\n9,10\n10,12\n11,11\n12,13\n13,1000\n"

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	table, err := lookup.Default()
	require.NoError(t, err)

	svc := app.NewCleaningService(app.Options{
		Encoder: cleaning.DefaultEncoderConfig(),
		Lookup:  table,
		Store:   artifactstore.NewFileStore(dir),
		Names:   app.ArtifactNames{Registry: "outliers.json", Mapping: "categorical_mapping.json"},
		Logger:  logging.Discard(),
	})
	uploads := upload.NewLocalFileStorageWithPath(filepath.Join(dir, "uploads"))
	return NewServer(svc, uploads, Options{MaxUploadBytes: 1 << 20}, logging.Discard()), dir
}

func multipartRequest(t *testing.T, target, filename, content string, fields map[string][]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestProfile(t *testing.T) {
	s, dir := newTestServer(t)

	rec := serve(s, multipartRequest(t, "/api/v1/profile", "data.csv", "name,score\nann,1\nbob,\nann,1\n", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, 3.0, body["row_count"])
	assert.Equal(t, 1.0, body["total_missing"])
	assert.Equal(t, 1.0, body["duplicate_count"])

	entries, err := os.ReadDir(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProfile_RequiresFile(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, multipartRequest(t, "/api/v1/profile", "", "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decode(t, rec)["code"])
}

func TestProfile_RejectsUnsupportedExtension(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, multipartRequest(t, "/api/v1/profile", "data.parquet", "x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UNSUPPORTED_FORMAT", decode(t, rec)["code"])
}

func TestClean(t *testing.T) {
	s, _ := newTestServer(t)
	fields := map[string][]string{"steps": {"dedupe,fill:score:median", "encode"}}

	rec := serve(s, multipartRequest(t, "/api/v1/clean", "data.csv", "name,score\nann,1\nbob,\nann,1\n", fields))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	report := body["report"].(map[string]interface{})
	assert.Equal(t, 3.0, report["rows_before"])
	assert.Equal(t, 2.0, report["rows_after"])
	assert.Len(t, report["steps"], 3)

	table := body["table"].(map[string]interface{})
	assert.Equal(t, []interface{}{"name", "score"}, table["columns"])
	assert.Equal(t, []interface{}{
		[]interface{}{0.0, 1.0},
		[]interface{}{1.0, 1.0},
	}, table["rows"])
}

func TestClean_InvalidStep(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, multipartRequest(t, "/api/v1/clean", "data.csv", "a\n1\n", map[string][]string{"steps": {"explode"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec)["code"])
}

func TestClean_FailingStepReturnsPartialReport(t *testing.T) {
	s, _ := newTestServer(t)
	fields := map[string][]string{"steps": {"dedupe", "outliers:handle:median"}}

	rec := serve(s, multipartRequest(t, "/api/v1/clean", "data.csv", "a\n1\n1\n", fields))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := decode(t, rec)
	report := body["report"].(map[string]interface{})
	assert.Len(t, report["steps"], 1)
}

func TestOutliersAndRegistryArtifact(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/artifacts/registry", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/artifacts/registry?run=../outliers", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(s, multipartRequest(t, "/api/v1/outliers", "amounts.csv", outlierCSV, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, 1.0, body["flagged"])
	run, ok := body["run"].(string)
	require.True(t, ok)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/artifacts/registry?run="+run, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "12")

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/artifacts/registry?run="+core.NewID().String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMappingArtifact(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, multipartRequest(t, "/api/v1/clean", "c.csv", "city\nparis\nberlin\n", map[string][]string{"steps": {"encode"}}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	run := decode(t, rec)["run"].(string)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/artifacts/mapping?run="+run, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"city":{"berlin":0,"paris":1}}`, rec.Body.String())

	// a later run can decode against the codes of an earlier one
	fields := map[string][]string{"steps": {"decode"}, "run": {run}}
	rec = serve(s, multipartRequest(t, "/api/v1/clean", "c.csv", "city\n1\n0\n", fields))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, run, decode(t, rec)["run"])
	table := decode(t, rec)["table"].(map[string]interface{})
	assert.Equal(t, []interface{}{
		[]interface{}{"paris"},
		[]interface{}{"berlin"},
	}, table["rows"])
}

func TestClean_RunsKeepSeparateRegistries(t *testing.T) {
	s, _ := newTestServer(t)
	detect := map[string][]string{"steps": {"outliers:detect"}}

	rec := serve(s, multipartRequest(t, "/api/v1/clean", "a.csv", outlierCSV, detect))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode(t, rec)["run"].(string)

	// a second upload flags a different row before the first run handles its own
	other := "id,amount\n1,1000\n2,12\n3,11\n4,13\n5,10\n6,12\n7,11\n8,13\n9,10\n10,12\n11,11\n12,13\n13,10\n"
	rec = serve(s, multipartRequest(t, "/api/v1/clean", "b.csv", other, detect))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEqual(t, first, decode(t, rec)["run"])

	handle := map[string][]string{"steps": {"outliers:handle:remove"}, "run": {first}}
	rec = serve(s, multipartRequest(t, "/api/v1/clean", "a.csv", outlierCSV, handle))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	table := decode(t, rec)["table"].(map[string]interface{})
	assert.Equal(t, 12.0, table["total_rows"])
	assert.Equal(t, []interface{}{1.0, 10.0}, table["rows"].([]interface{})[0], "row 0 is kept")
}

func TestCorrelation(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, multipartRequest(t, "/api/v1/correlation", "c.csv", "x,y,k\n1,2,5\n2,4,5\n3,6,5\n", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var matrix struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matrix))
	assert.Equal(t, []string{"x", "y", "k"}, matrix.Columns)
	require.NotNil(t, matrix.Values[0][1])
	assert.InDelta(t, 1.0, *matrix.Values[0][1], 1e-9)
	assert.Nil(t, matrix.Values[0][2])
	assert.Nil(t, matrix.Values[2][2])
}

func TestSampleSize(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/sample-size?population=1000&confidence=0.95&margin=0.05", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 278.0, decode(t, rec)["required"])

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/sample-size?population=150.5", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 109.0, decode(t, rec)["required"])

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/sample-size?population=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/sample-size?population=100&confidence=0.333", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "LOOKUP_ERROR", decode(t, rec)["code"])
}

func TestRun_ShutsDownWhenContextIsCancelled(t *testing.T) {
	s, _ := newTestServer(t)
	s.options.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
