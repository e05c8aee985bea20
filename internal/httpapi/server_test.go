package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avi3tal/flowforge/internal/builder"
	"github.com/avi3tal/flowforge/internal/document"
	"github.com/avi3tal/flowforge/internal/engine"
	"github.com/avi3tal/flowforge/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubCompleter struct {
	reply string
}

func (s stubCompleter) Complete(context.Context, string) (string, error) {
	return s.reply, nil
}

// testServer runs the API against an in-memory store and a stub engine.
func testServer(t *testing.T, engineHandler http.HandlerFunc) *gin.Engine {
	t.Helper()

	st, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	stubEngine := httptest.NewServer(engineHandler)
	t.Cleanup(stubEngine.Close)

	s := New(st, engine.NewClient(stubEngine.URL), WithCompleter(stubCompleter{reply: "ok"}))
	return s.Router()
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func demoDocument(t *testing.T) document.Document {
	t.Helper()
	w := builder.NewWorkflow("Demo")
	s := w.AddNode(builder.KindStart, builder.Position{})
	e := w.AddNode(builder.KindEnd, builder.Position{X: 400})
	_, err := w.Connect(s.ID, "output", e.ID, "input")
	require.NoError(t, err)
	return document.Snapshot(w)
}

func noEngine(t *testing.T) http.HandlerFunc {
	return func(http.ResponseWriter, *http.Request) {
		t.Fatal("engine must not be called")
	}
}

func TestHealth(t *testing.T) {
	r := testServer(t, func(http.ResponseWriter, *http.Request) {})

	rec := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWorkflowCRUD(t *testing.T) {
	r := testServer(t, noEngine(t))
	doc := demoDocument(t)

	rec := doJSON(t, r, http.MethodPost, "/api/workflows", doc)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/workflows", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, []any{"Demo"}, data["workflows"])

	rec = doJSON(t, r, http.MethodGet, "/api/workflows/Demo", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/api/workflows/Demo", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/workflows/Demo", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidateEndpoint(t *testing.T) {
	r := testServer(t, noEngine(t))

	rec := doJSON(t, r, http.MethodPost, "/api/workflows/validate", demoDocument(t))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, true, data["valid"])

	rec = doJSON(t, r, http.MethodPost, "/api/workflows/validate", document.Document{})
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, false, data["valid"])
	assert.Len(t, data["errors"], 4)
}

func TestValidateRejectsMalformedDocument(t *testing.T) {
	r := testServer(t, noEngine(t))

	req := httptest.NewRequest(http.MethodPost, "/api/workflows/validate", bytes.NewBufferString("not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExecuteEndpoint(t *testing.T) {
	doc := demoDocument(t)
	startID := doc.Nodes[0].ID

	r := testServer(t, func(rw http.ResponseWriter, req *http.Request) {
		result := engine.ExecutionResult{
			Stats:         engine.ExecutionStats{NodesExecuted: 2},
			NodeResults:   []engine.NodeResult{{NodeID: startID, Status: engine.StatusSuccess}},
			ExecutionPath: []string{startID},
		}
		require.NoError(t, json.NewEncoder(rw).Encode(result))
	})

	rec := doJSON(t, r, http.MethodPost, "/api/workflows/execute", doc)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, []any{"Start 1"}, data["path"])
}

func TestExecuteInvalidWorkflowNotSubmitted(t *testing.T) {
	r := testServer(t, noEngine(t))

	rec := doJSON(t, r, http.MethodPost, "/api/workflows/execute", document.Document{Name: "Demo"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestExecuteEngineFailure(t *testing.T) {
	r := testServer(t, func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
		_, _ = rw.Write([]byte(`{"error": "engine exploded"}`))
	})

	rec := doJSON(t, r, http.MethodPost, "/api/workflows/execute", demoDocument(t))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "engine exploded", decodeBody(t, rec)["error"])
}

func TestAgentEndpoints(t *testing.T) {
	r := testServer(t, noEngine(t))

	rec := doJSON(t, r, http.MethodGet, "/api/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/agents/summarizer/run", gin.H{"input": "long text"})
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "summarizer", data["agent_id"])

	rec = doJSON(t, r, http.MethodPost, "/api/agents/ghost/run", gin.H{"input": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
