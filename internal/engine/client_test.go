package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avi3tal/flowforge/internal/builder"
	"github.com/avi3tal/flowforge/internal/document"
)

func validWorkflow(t *testing.T) *builder.Workflow {
	t.Helper()
	w := builder.NewWorkflow("Demo")
	s := w.AddNode(builder.KindStart, builder.Position{})
	e := w.AddNode(builder.KindEnd, builder.Position{X: 400})
	_, err := w.Connect(s.ID, "output", e.ID, "input")
	require.NoError(t, err)
	return w
}

func TestSubmitSuccess(t *testing.T) {
	w := validWorkflow(t)

	var received document.Document
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		result := ExecutionResult{
			Stats: ExecutionStats{NodesExecuted: 2, TotalTime: 0.42},
			NodeResults: []NodeResult{
				{NodeID: w.Nodes()[0].ID, Status: StatusSuccess},
				{NodeID: w.Nodes()[1].ID, Status: StatusSuccess},
			},
			ExecutionPath: []string{w.Nodes()[0].ID, w.Nodes()[1].ID},
			FinalOutput:   "done",
		}
		rw.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(rw).Encode(result))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.Submit(context.Background(), w)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.NodesExecuted)
	assert.Equal(t, "done", result.FinalOutput)
	assert.Len(t, result.NodeResults, 2)

	// The request is the snapshot shape: no exportedAt stamp.
	assert.Equal(t, "Demo", received.Name)
	assert.Nil(t, received.ExportedAt)
	assert.Len(t, received.Nodes, 2)
	assert.False(t, c.Running())
}

func TestSubmitBlockedByValidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid workflow must not reach the engine")
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Submit(context.Background(), builder.NewWorkflow(""))

	var verr *builder.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{
		"Workflow name is required",
		"At least one node is required",
		"Workflow must have a start node",
		"Workflow must have an end node",
	}, verr.Messages)
}

func TestSubmitEngineFailurePayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = rw.Write([]byte(`{"error": "loop iterations exhausted"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Submit(context.Background(), validWorkflow(t))

	var eerr *ExecutionError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, "loop iterations exhausted", eerr.Message)
}

func TestSubmitTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL)
	_, err := c.Submit(context.Background(), validWorkflow(t))

	var eerr *ExecutionError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, "request failed", eerr.Message)
}

func TestSubmitSingleInFlight(t *testing.T) {
	w := validWorkflow(t)

	entered := make(chan struct{})
	unblock := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		close(entered)
		<-unblock
		_, _ = rw.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = c.Submit(context.Background(), w)
	}()

	<-entered
	assert.True(t, c.Running())
	_, err := c.Submit(context.Background(), w)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(unblock)
	wg.Wait()
	assert.False(t, c.Running())
}
