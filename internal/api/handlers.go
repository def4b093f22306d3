package api

import (
	"net/http"
	"strconv"
	"strings"

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
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/workflow"
)

// filterOf reads the task filter from the query string.
func filterOf(c *gin.Context) (model.TaskFilter, error) {
	var f model.TaskFilter
	if v := c.Query("system"); v != "" {
		s, err := model.ParseSystem(v)
		if err != nil {
			return f, err
		}
		f.System = &s
	}
	if v := c.Query("stage"); v != "" {
		s, err := model.ParseStage(v)
		if err != nil {
			return f, err
		}
		f.Stage = &s
	}
	if v := c.Query("status"); v != "" {
		s, err := model.ParseStatus(v)
		if err != nil {
			return f, err
		}
		f.Status = &s
	}
	if v, ok := c.GetQuery("executor"); ok {
		f.Executor = &v
	}
	return f, nil
}

func (h handler) listTasks(c *gin.Context) {
	filter, err := filterOf(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	tasks, err := h.svc.List.Run(c.Request.Context(), list.Request{Filter: filter})
	if err != nil {
		h.fail(c, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (h handler) getTask(c *gin.Context) {
	task, err := h.svc.Status.Run(c.Request.Context(), status.Request{TaskID: c.Param("id")})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type createTaskRequest struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Stage             string     `json:"stage"`
	System            string     `json:"system"`
	Specialist        string     `json:"specialist"`
	Executor          string     `json:"executor"`
	StartExpected     model.Date `json:"dateStartExpected"`
	EndExpected       model.Date `json:"dateEndExpected"`
	IsTransitionPoint bool       `json:"isTransitionPoint"`
	TransitionTag     string     `json:"transitionTag"`
	Subtasks          []string   `json:"subtasks"`
}

func (h handler) createTask(c *gin.Context) {
	var body createTaskRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	req := create.Request{
		Actor:             actorOf(c),
		Title:             body.Title,
		Description:       body.Description,
		Specialist:        body.Specialist,
		Executor:          body.Executor,
		StartExpected:     body.StartExpected,
		EndExpected:       body.EndExpected,
		IsTransitionPoint: body.IsTransitionPoint,
		TransitionTag:     body.TransitionTag,
		Subtasks:          body.Subtasks,
	}
	if body.Stage != "" {
		stage, err := model.ParseStage(body.Stage)
		if err != nil {
			h.fail(c, err)
			return
		}
		req.Stage = stage
	}
	if body.System != "" {
		system, err := model.ParseSystem(body.System)
		if err != nil {
			h.fail(c, err)
			return
		}
		req.System = system
	}

	task, err := h.svc.Create.Run(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

type transitionResponse struct {
	Task           model.Task          `json:"task"`
	PreviousStatus model.Status        `json:"previousStatus"`
	Changed        bool                `json:"changed"`
	NotifyManager  bool                `json:"notifyManager"`
	Entry          *model.HistoryEntry `json:"historyEntry,omitempty"`
}

func (h handler) transition(c *gin.Context, req transition.Request) {
	req.TaskID = c.Param("id")
	req.Actor = actorOf(c)

	tr, err := h.svc.Transition.Run(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, transitionResponse{
		Task:           tr.Task,
		PreviousStatus: tr.Previous,
		Changed:        tr.Changed,
		NotifyManager:  tr.NotifyManager,
		Entry:          tr.Entry,
	})
}

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h handler) setStatus(c *gin.Context) {
	var body statusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	st, err := model.ParseStatus(body.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.transition(c, transition.Request{Status: st, BlockReason: body.Reason})
}

type moveRequest struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

func (h handler) moveTask(c *gin.Context) {
	var body moveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	col, err := workflow.ParseColumn(body.Column)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.transition(c, transition.Request{Column: col, BlockReason: body.Reason})
}

type swipeRequest struct {
	Offset *float64 `json:"offset"`
	Reason string   `json:"reason"`
}

func (h handler) swipeTask(c *gin.Context) {
	var body swipeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	h.transition(c, transition.Request{SwipeOffset: body.Offset, BlockReason: body.Reason})
}

type gateRequest struct {
	Decision string  `json:"decision"`
	Notes    *string `json:"notes"`
}

func (h handler) decideGate(c *gin.Context) {
	var body gateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	req := gate.Request{TaskID: c.Param("id"), Actor: actorOf(c), Notes: body.Notes}
	if body.Decision != "" {
		d, err := model.ParseGateStatus(body.Decision)
		if err != nil {
			h.fail(c, err)
			return
		}
		req.Decision = d
	}
	h.gate(c, req)
}

type gateNotesRequest struct {
	Notes string `json:"notes"`
}

func (h handler) setGateNotes(c *gin.Context) {
	var body gateNotesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	h.gate(c, gate.Request{TaskID: c.Param("id"), Actor: actorOf(c), Notes: &body.Notes})
}

func (h handler) gate(c *gin.Context, req gate.Request) {
	task, err := h.svc.Gate.Run(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type fieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h handler) updateField(c *gin.Context) {
	var body fieldRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.svc.Update.Run(c.Request.Context(), update.Request{
		TaskID: c.Param("id"),
		Actor:  actorOf(c),
		Field:  update.Field(strings.TrimSpace(body.Field)),
		Value:  body.Value,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type photoRequest struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (h handler) addPhoto(c *gin.Context) {
	var body photoRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.svc.Photo.Add(c.Request.Context(), photo.AddRequest{
		TaskID:      c.Param("id"),
		Actor:       actorOf(c),
		URL:         body.URL,
		Description: body.Description,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h handler) removePhoto(c *gin.Context) {
	task, err := h.svc.Photo.Remove(c.Request.Context(), photo.RemoveRequest{
		TaskID:  c.Param("id"),
		Actor:   actorOf(c),
		PhotoID: c.Param("photoID"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type subtaskRequest struct {
	Title string `json:"title"`
}

func (h handler) addSubtask(c *gin.Context) {
	var body subtaskRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.svc.Subtask.Add(c.Request.Context(), subtask.AddRequest{
		TaskID: c.Param("id"),
		Actor:  actorOf(c),
		Title:  body.Title,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h handler) toggleSubtask(c *gin.Context) {
	task, err := h.svc.Subtask.Toggle(c.Request.Context(), subtask.ToggleRequest{
		TaskID:    c.Param("id"),
		Actor:     actorOf(c),
		SubtaskID: c.Param("subID"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h handler) removeSubtask(c *gin.Context) {
	confirmed := false
	if v := c.Query("confirmed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "confirmed must be a boolean"})
			return
		}
		confirmed = b
	}

	task, err := h.svc.Subtask.Remove(c.Request.Context(), subtask.RemoveRequest{
		TaskID:    c.Param("id"),
		Actor:     actorOf(c),
		SubtaskID: c.Param("subID"),
		Confirmed: confirmed,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h handler) getHistory(c *gin.Context) {
	entries, err := h.svc.History.Run(c.Request.Context(), history.Request{TaskID: c.Param("id")})
	if err != nil {
		h.fail(c, err)
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h handler) exportTask(c *gin.Context) {
	text, err := h.svc.Export.Run(c.Request.Context(), export.Request{TaskID: c.Param("id")})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.String(http.StatusOK, text)
}

func (h handler) report(c *gin.Context) {
	filter, err := filterOf(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	rep, err := h.svc.Report.Run(c.Request.Context(), report.Request{Filter: filter})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}
