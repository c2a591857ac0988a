package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paulitab/paulalb-assignment-2/internal/clustering"
	"github.com/paulitab/paulalb-assignment-2/internal/geometry"
	"github.com/paulitab/paulalb-assignment-2/internal/service"
	"github.com/paulitab/paulalb-assignment-2/internal/session"
)

// SessionHeader carries the session identifier. Requests without it use
// service.DefaultSessionID.
const SessionHeader = "X-Session-ID"

type handler struct {
	manager *service.Manager
}

func (h *handler) setRoutes(r *gin.Engine) {
	r.POST("/sessions", h.createSession)
	r.POST("/generate_dataset", h.generateDataset)
	r.POST("/start_kmeans", h.startKMeans)
	r.POST("/step_kmeans", h.stepKMeans)
	r.POST("/reset", h.reset)
	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func sessionID(c *gin.Context) string {
	if id := c.GetHeader(SessionHeader); id != "" {
		return id
	}
	return service.DefaultSessionID
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// abort replies with the status matching err. Parameter and state errors
// are the caller's fault; anything else is ours.
func abort(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	if clustering.IsInvalidParameter(err) || clustering.IsInvalidState(err) {
		code = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(code, errorResponse{Status: "error", Message: clustering.Message(err)})
}

// bindOptional decodes the JSON body into target. An empty body leaves
// target untouched.
func bindOptional(c *gin.Context, target interface{}) bool {
	err := c.ShouldBindJSON(target)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Status: "error", Message: "malformed request body: " + err.Error()})
	return false
}

// kmeansRequest is the body of start_kmeans and step_kmeans.
type kmeansRequest struct {
	K               int              `json:"k"`
	InitMethod      string           `json:"init_method"`
	ManualCentroids []geometry.Point `json:"manual_centroids"`
}

func (r kmeansRequest) params() (session.Params, error) {
	strategy, err := clustering.ParseStrategy(r.InitMethod)
	if err != nil {
		return session.Params{}, err
	}
	return session.Params{K: r.K, Strategy: strategy, Manual: r.ManualCentroids}, nil
}

// clusters renders partition with empty clusters as [] rather than null.
func clusters(partition clustering.Partition) [][]geometry.Point {
	out := make([][]geometry.Point, len(partition))
	for i, c := range partition {
		out[i] = geometry.Clone(c)
	}
	return out
}

func (h *handler) createSession(c *gin.Context) {
	id, err := h.manager.CreateSession(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

func (h *handler) generateDataset(c *gin.Context) {
	var req struct {
		NumPoints int `json:"num_points"`
	}
	if !bindOptional(c, &req) {
		return
	}

	points, err := h.manager.GenerateDataset(c.Request.Context(), sessionID(c), req.NumPoints)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dataset": geometry.Clone(points)})
}

func (h *handler) startKMeans(c *gin.Context) {
	var req kmeansRequest
	if !bindOptional(c, &req) {
		return
	}
	params, err := req.params()
	if err != nil {
		abort(c, err)
		return
	}

	res, err := h.manager.Initialize(c.Request.Context(), sessionID(c), params)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"centroids": geometry.Clone(res.Centroids),
		"clusters":  clusters(res.Partition),
	})
}

func (h *handler) stepKMeans(c *gin.Context) {
	var req kmeansRequest
	if !bindOptional(c, &req) {
		return
	}

	// Without init_method the session falls back to its last parameters.
	var fallback *session.Params
	if req.InitMethod != "" {
		params, err := req.params()
		if err != nil {
			abort(c, err)
			return
		}
		fallback = &params
	}

	res, err := h.manager.Step(c.Request.Context(), sessionID(c), fallback)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    res.Status,
		"centroids": geometry.Clone(res.Centroids),
		"clusters":  clusters(res.Partition),
		"iteration": res.Iteration,
	})
}

func (h *handler) reset(c *gin.Context) {
	points, err := h.manager.Reset(c.Request.Context(), sessionID(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset", "dataset": geometry.Clone(points)})
}

func (h *handler) health(c *gin.Context) {
	if err := h.manager.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Status: "error", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
