package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"sentidash/internal/platform"
	"sentidash/internal/predict"
	"sentidash/internal/session"
	"sentidash/internal/store/journal"

	"github.com/gin-gonic/gin"
)

// DispatchLog is the read side of the dispatch journal.
type DispatchLog interface {
	List(ctx context.Context, q journal.Query) ([]journal.Entry, error)
}

// Router maps the session boundary onto /api routes.
type Router struct {
	Session *session.Session
	Journal DispatchLog
}

func NewRouter(s *session.Session, j DispatchLog) *Router {
	return &Router{Session: s, Journal: j}
}

func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/inputs", r.handleInputs)
	group.GET("/inputs/:key", r.handleInput)
	group.PUT("/inputs/:key", r.handleSetInput)
	group.GET("/state", r.handleState)
	group.GET("/state/stream", r.handleStateStream)
	group.POST("/predict/:target", r.handlePredict)
	group.POST("/predict-each", r.handlePredictEach)
	group.GET("/dispatches", r.handleDispatches)
}

type textBody struct {
	Text *string `json:"text"`
}

type predictBody struct {
	Text  *string `json:"text"`
	Async bool    `json:"async"`
}

func (r *Router) handleInputs(c *gin.Context) {
	c.JSON(http.StatusOK, r.Session.Inputs().Snapshot())
}

func (r *Router) handleInput(c *gin.Context) {
	key, err := platform.ParseKey(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "text": r.Session.Inputs().Text(key)})
}

func (r *Router) handleSetInput(c *gin.Context) {
	key, err := platform.ParseKey(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	var body textBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"text\": string}"})
		return
	}
	if err := r.Session.Inputs().SetText(key, *body.Text); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "text": *body.Text})
}

func (r *Router) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, r.Session.View())
}

// handlePredict predicts the target. Without a "text" field the target's
// input buffer is used. async returns 202 immediately.
func (r *Router) handlePredict(c *gin.Context) {
	mode, err := predict.ParseMode(c.Param("target"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	var body predictBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text := r.Session.Inputs().Text(predict.BufferKey(mode))
	if body.Text != nil {
		text = *body.Text
	}
	if body.Async {
		r.Session.Submit(c.Request.Context(), text, mode)
		c.JSON(http.StatusAccepted, gin.H{"target": mode.Target(), "status": "submitted"})
		return
	}
	if err := r.Session.HandlePredict(c.Request.Context(), text, mode); err != nil {
		c.JSON(failureStatus(err), gin.H{"error": err.Error(), "view": r.Session.View()})
		return
	}
	c.JSON(http.StatusOK, r.Session.View())
}

func (r *Router) handlePredictEach(c *gin.Context) {
	if err := r.Session.PredictEach(c.Request.Context()); err != nil {
		c.JSON(failureStatus(err), gin.H{"error": err.Error(), "view": r.Session.View()})
		return
	}
	c.JSON(http.StatusOK, r.Session.View())
}

func (r *Router) handleDispatches(c *gin.Context) {
	if r.Journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dispatch journal disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	entries, err := r.Journal.List(c.Request.Context(), journal.Query{
		Target: strings.TrimSpace(c.Query("target")),
		Status: strings.TrimSpace(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries, "limit": limit, "offset": offset})
}

func failureStatus(err error) int {
	var df *predict.DispatchFailure
	if errors.As(err, &df) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
