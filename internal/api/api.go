// Package api is the local JSON HTTP API over the application services.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/obrahub/obra/internal/app/create"
	"github.com/obrahub/obra/internal/app/export"
	"github.com/obrahub/obra/internal/app/gate"
	"github.com/obrahub/obra/internal/app/history"
	"github.com/obrahub/obra/internal/app/list"
	"github.com/obrahub/obra/internal/app/photo"
	"github.com/obrahub/obra/internal/app/report"
	"github.com/obrahub/obra/internal/app/status"
	"github.com/obrahub/obra/internal/app/subtask"
	"github.com/obrahub/obra/internal/app/transition"
	"github.com/obrahub/obra/internal/app/update"
	"github.com/obrahub/obra/internal/conventions"
	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/model"
)

// UserHeader is the header that identifies the acting user.
const UserHeader = conventions.UserHeader

// Services are the application services the API exposes.
type Services struct {
	Create     *create.Service
	List       *list.Service
	Status     *status.Service
	Transition *transition.Service
	Gate       *gate.Service
	Update     *update.Service
	Photo      *photo.Service
	Subtask    *subtask.Service
	History    *history.Service
	Report     *report.Service
	Export     *export.Service
}

func (s Services) validate() error {
	switch {
	case s.Create == nil:
		return fmt.Errorf("create service is required")
	case s.List == nil:
		return fmt.Errorf("list service is required")
	case s.Status == nil:
		return fmt.Errorf("status service is required")
	case s.Transition == nil:
		return fmt.Errorf("transition service is required")
	case s.Gate == nil:
		return fmt.Errorf("gate service is required")
	case s.Update == nil:
		return fmt.Errorf("update service is required")
	case s.Photo == nil:
		return fmt.Errorf("photo service is required")
	case s.Subtask == nil:
		return fmt.Errorf("subtask service is required")
	case s.History == nil:
		return fmt.Errorf("history service is required")
	case s.Report == nil:
		return fmt.Errorf("report service is required")
	case s.Export == nil:
		return fmt.Errorf("export service is required")
	}
	return nil
}

// HandlerConfig is the configuration for the API handler.
type HandlerConfig struct {
	Services Services
	// Users is the directory the acting user is resolved from.
	Users []model.User
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	Logger         log.Logger
}

func (c *HandlerConfig) defaults() error {
	if err := c.Services.validate(); err != nil {
		return err
	}
	if len(c.Users) == 0 {
		c.Users = model.DefaultUsers
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "api.Handler"})
	return nil
}

type handler struct {
	svc    Services
	users  []model.User
	logger log.Logger
}

// NewHandler returns the HTTP handler with all the API routes.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	h := handler{
		svc:    cfg.Services,
		users:  cfg.Users,
		logger: cfg.Logger,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), h.accessLog)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	r.GET("/report", h.report)
	r.GET("/tasks", h.listTasks)
	r.GET("/tasks/:id", h.getTask)
	r.GET("/tasks/:id/history", h.getHistory)
	r.GET("/tasks/:id/export", h.exportTask)

	w := r.Group("/", h.actor)
	w.POST("/tasks", h.createTask)
	w.POST("/tasks/:id/status", h.setStatus)
	w.POST("/tasks/:id/move", h.moveTask)
	w.POST("/tasks/:id/swipe", h.swipeTask)
	w.POST("/tasks/:id/gate", h.decideGate)
	w.POST("/tasks/:id/gate/notes", h.setGateNotes)
	w.POST("/tasks/:id/fields", h.updateField)
	w.POST("/tasks/:id/photos", h.addPhoto)
	w.DELETE("/tasks/:id/photos/:photoID", h.removePhoto)
	w.POST("/tasks/:id/subtasks", h.addSubtask)
	w.POST("/tasks/:id/subtasks/:subID/toggle", h.toggleSubtask)
	w.DELETE("/tasks/:id/subtasks/:subID", h.removeSubtask)

	return r, nil
}

const actorKey = "actor"

// actor resolves the acting user from the user header.
func (h handler) actor(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader(UserHeader))
	if id == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: UserHeader + " header is required"})
		return
	}
	u, err := model.FindUser(h.users, id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: fmt.Sprintf("unknown user %q", id)})
		return
	}
	c.Set(actorKey, u)
	c.Next()
}

func actorOf(c *gin.Context) model.User {
	u, _ := c.MustGet(actorKey).(model.User)
	return u
}

func (h handler) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.logger.Debugf("%s %s %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// fail writes the error with the status code of its kind.
func (h handler) fail(c *gin.Context, err error) {
	code := statusCodeOf(err)
	resp := errorResponse{Error: err.Error()}
	if kind, ok := model.ValidationKindOf(err); ok {
		resp.Kind = string(kind)
	}
	if code == http.StatusInternalServerError {
		h.logger.Errorf("%s %s: %s", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(code, resp)
}

func statusCodeOf(err error) int {
	switch {
	case errors.Is(err, model.ErrNotValid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrAlreadyExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %s", err)})
}
