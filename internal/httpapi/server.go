// Package httpapi exposes the workflow builder over HTTP: stored workflow
// documents, validation, execution and the agent catalogue.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/avi3tal/flowforge/internal/agents"
	"github.com/avi3tal/flowforge/internal/builder"
	"github.com/avi3tal/flowforge/internal/document"
	"github.com/avi3tal/flowforge/internal/engine"
	"github.com/avi3tal/flowforge/internal/store"
)

// Server wires the builder's components behind a gin router.
type Server struct {
	store     *store.Store
	engine    *engine.Client
	completer agents.Completer
	bounds    builder.Bounds
	log       *zap.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithCompleter attaches the LLM completion service used by the agent
// endpoints. Without it, agent runs return 503.
func WithCompleter(c agents.Completer) Option {
	return func(s *Server) { s.completer = c }
}

// WithBounds overrides the canvas bounds applied to imported documents.
func WithBounds(b builder.Bounds) Option {
	return func(s *Server) { s.bounds = b }
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a Server over the given store and engine client.
func New(st *store.Store, eng *engine.Client, opts ...Option) *Server {
	s := &Server{
		store:  st,
		engine: eng,
		bounds: builder.DefaultBounds(),
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func sendSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: data})
}

func sendError(c *gin.Context, status int, msg string) {
	c.JSON(status, apiResponse{Success: false, Error: msg})
}

// Router builds the gin router with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	{
		api.GET("/workflows", s.handleListWorkflows)
		api.POST("/workflows", s.handleSaveWorkflow)
		api.GET("/workflows/:name", s.handleGetWorkflow)
		api.DELETE("/workflows/:name", s.handleDeleteWorkflow)
		api.POST("/workflows/validate", s.handleValidate)
		api.POST("/workflows/execute", s.handleExecute)

		api.GET("/agents", s.handleListAgents)
		api.POST("/agents/:id/run", s.handleRunAgent)
	}
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	sendSuccess(c, gin.H{"status": "healthy", "timestamp": time.Now().Unix()})
}

func (s *Server) handleListWorkflows(c *gin.Context) {
	names, err := s.store.List()
	if err != nil {
		s.log.Error("list workflows", zap.Error(err))
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	sendSuccess(c, gin.H{"workflows": names})
}

func (s *Server) handleSaveWorkflow(c *gin.Context) {
	doc, ok := s.bindDocument(c)
	if !ok {
		return
	}
	if err := s.store.Save(doc); err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}
	sendSuccess(c, gin.H{"name": doc.Name})
}

func (s *Server) handleGetWorkflow(c *gin.Context) {
	doc, err := s.store.Get(c.Param("name"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendError(c, http.StatusNotFound, "workflow not found")
			return
		}
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	sendSuccess(c, gin.H{"workflow": doc})
}

func (s *Server) handleDeleteWorkflow(c *gin.Context) {
	if err := s.store.Delete(c.Param("name")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendError(c, http.StatusNotFound, "workflow not found")
			return
		}
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	sendSuccess(c, gin.H{"deleted": c.Param("name")})
}

func (s *Server) handleValidate(c *gin.Context) {
	w, ok := s.bindWorkflow(c)
	if !ok {
		return
	}
	msgs := builder.Validate(w)
	sendSuccess(c, gin.H{"valid": len(msgs) == 0, "errors": msgs})
}

func (s *Server) handleExecute(c *gin.Context) {
	w, ok := s.bindWorkflow(c)
	if !ok {
		return
	}

	result, err := s.engine.Submit(c.Request.Context(), w)
	if err != nil {
		var verr *builder.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, apiResponse{
				Success: false,
				Data:    gin.H{"errors": verr.Messages},
				Error:   "workflow is not valid",
			})
			return
		}
		if errors.Is(err, engine.ErrSubmissionInFlight) {
			sendError(c, http.StatusConflict, err.Error())
			return
		}
		var eerr *engine.ExecutionError
		if errors.As(err, &eerr) {
			sendError(c, http.StatusBadGateway, eerr.Message)
			return
		}
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	sendSuccess(c, gin.H{
		"result": result,
		"trace":  engine.RenderTrace(w, result),
		"path":   engine.PathLabels(w, result),
	})
}

func (s *Server) handleListAgents(c *gin.Context) {
	sendSuccess(c, gin.H{"agents": agents.Catalogue()})
}

func (s *Server) handleRunAgent(c *gin.Context) {
	if s.completer == nil {
		sendError(c, http.StatusServiceUnavailable, "no completion service configured")
		return
	}

	agent, err := agents.Lookup(c.Param("id"))
	if err != nil {
		sendError(c, http.StatusNotFound, "unknown agent")
		return
	}

	var req struct {
		Input string `json:"input"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	resp, err := agent.Run(c.Request.Context(), s.completer, req.Input)
	if err != nil {
		s.log.Warn("agent run failed", zap.String("agent", agent.ID), zap.Error(err))
		sendError(c, http.StatusBadGateway, "request failed")
		return
	}
	sendSuccess(c, resp)
}

// bindDocument decodes the request body as a workflow document.
func (s *Server) bindDocument(c *gin.Context) (document.Document, bool) {
	var doc document.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		sendError(c, http.StatusBadRequest, "invalid file format")
		return document.Document{}, false
	}
	return doc, true
}

// bindWorkflow decodes the request body as a document and rebuilds the
// workflow it describes.
func (s *Server) bindWorkflow(c *gin.Context) (*builder.Workflow, bool) {
	doc, ok := s.bindDocument(c)
	if !ok {
		return nil, false
	}
	w, err := document.Restore(doc, builder.WithBounds(s.bounds))
	if err != nil {
		sendError(c, http.StatusBadRequest, "invalid file format")
		return nil, false
	}
	return w, true
}
