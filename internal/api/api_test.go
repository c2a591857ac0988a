package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulitab/paulalb-assignment-2/internal/dataset"
	"github.com/paulitab/paulalb-assignment-2/internal/geometry"
	"github.com/paulitab/paulalb-assignment-2/internal/service"
	"github.com/paulitab/paulalb-assignment-2/internal/session"
	"github.com/paulitab/paulalb-assignment-2/internal/storage/memory"
	"github.com/paulitab/paulalb-assignment-2/internal/testutil"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	testutil.InitTestLogger()
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store := memory.New(memory.DefaultConfig())
	t.Cleanup(func() { store.Close() })

	gen := dataset.NewGenerator(dataset.Config{DefaultPoints: 50, MaxPoints: 1000}, testutil.Rand(7))
	return NewRouter(service.NewManager(store, gen, session.WithRand(testutil.Rand(8))))
}

func do(t *testing.T, r http.Handler, method, path, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type stepResponse struct {
	Status    string             `json:"status"`
	Centroids []geometry.Point   `json:"centroids"`
	Clusters  [][]geometry.Point `json:"clusters"`
	Iteration int                `json:"iteration"`
}

func TestGenerateDataset(t *testing.T) {
	r := newTestRouter(t)

	t.Run("explicit size", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/generate_dataset", "", `{"num_points": 25}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Dataset []geometry.Point `json:"dataset"`
		}
		decode(t, w, &resp)
		assert.Len(t, resp.Dataset, 25)
		for _, p := range resp.Dataset {
			assert.True(t, p.X >= 0 && p.X < 1 && p.Y >= 0 && p.Y < 1)
		}
	})

	t.Run("default size", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/generate_dataset", "", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Dataset []geometry.Point `json:"dataset"`
		}
		decode(t, w, &resp)
		assert.Len(t, resp.Dataset, 50)
	})

	t.Run("too many points", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/generate_dataset", "", `{"num_points": 5000}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/generate_dataset", "", `{"num_points": "many"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp errorResponse
		decode(t, w, &resp)
		assert.Equal(t, "error", resp.Status)
	})
}

func TestStartWithoutDataset(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/start_kmeans", "", `{"k": 2, "init_method": "random"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorResponse
	decode(t, w, &resp)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "no dataset", resp.Message)
}

func TestStartRejectsBadParameters(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/generate_dataset", "", `{"num_points": 10}`).Code)

	tests := []struct {
		name string
		body string
	}{
		{"unknown method", `{"k": 2, "init_method": "spectral"}`},
		{"k too large", `{"k": 11, "init_method": "random"}`},
		{"k zero", `{"k": 0, "init_method": "kmeans++"}`},
		{"manual count mismatch", `{"k": 2, "init_method": "manual", "manual_centroids": [[0.1, 0.1]]}`},
		{"malformed point", `{"k": 1, "init_method": "manual", "manual_centroids": [[0.1]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/start_kmeans", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestStepUntilConverged(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/generate_dataset", "", `{"num_points": 200}`).Code)

	w := do(t, r, http.MethodPost, "/start_kmeans", "", `{"k": 4, "init_method": "farthest_first"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var started struct {
		Centroids []geometry.Point   `json:"centroids"`
		Clusters  [][]geometry.Point `json:"clusters"`
	}
	decode(t, w, &started)
	assert.Len(t, started.Centroids, 4)
	assert.Len(t, started.Clusters, 4)

	var resp stepResponse
	for i := 0; i <= session.DefaultMaxIterations; i++ {
		w = do(t, r, http.MethodPost, "/step_kmeans", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &resp)
		if resp.Status == "converged" {
			break
		}
		assert.Equal(t, "stepping", resp.Status)
	}
	assert.Equal(t, "converged", resp.Status)
	assert.LessOrEqual(t, resp.Iteration, session.DefaultMaxIterations)

	total := 0
	for _, c := range resp.Clusters {
		assert.NotNil(t, c)
		total += len(c)
	}
	assert.Equal(t, 200, total)
}

func TestStepSeedsWithRequestParameters(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/generate_dataset", "", `{"num_points": 30}`).Code)

	w := do(t, r, http.MethodPost, "/step_kmeans", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/step_kmeans", "",
		`{"k": 2, "init_method": "manual", "manual_centroids": [[0.25, 0.25], [0.75, 0.75]]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp stepResponse
	decode(t, w, &resp)
	assert.Equal(t, "stepping", resp.Status)
	assert.Equal(t, 1, resp.Iteration)
	assert.Equal(t, []geometry.Point{{X: 0.25, Y: 0.25}, {X: 0.75, Y: 0.75}}, resp.Centroids)
}

func TestResetKeepsDataset(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/reset", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/generate_dataset", "", `{"num_points": 12}`)
	require.Equal(t, http.StatusOK, w.Code)
	var generated struct {
		Dataset []geometry.Point `json:"dataset"`
	}
	decode(t, w, &generated)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/start_kmeans", "", `{"k": 3, "init_method": "random"}`).Code)

	w = do(t, r, http.MethodPost, "/reset", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var reset struct {
		Status  string           `json:"status"`
		Dataset []geometry.Point `json:"dataset"`
	}
	decode(t, w, &reset)
	assert.Equal(t, "reset", reset.Status)
	assert.Equal(t, generated.Dataset, reset.Dataset)
}

func TestSessionsAreSeparatedByHeader(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/sessions", "", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		SessionID string `json:"session_id"`
	}
	decode(t, w, &created)
	require.NotEmpty(t, created.SessionID)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/generate_dataset", created.SessionID, `{"num_points": 5}`).Code)

	// The default session has no dataset of its own.
	w = do(t, r, http.MethodPost, "/reset", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/reset", created.SessionID, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	do(t, r, http.MethodPost, "/generate_dataset", "", `{"num_points": 5}`)
	do(t, r, http.MethodPost, "/start_kmeans", "", `{"k": 1, "init_method": "random"}`)

	w = do(t, r, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kmeans_session_operations_total")
}
