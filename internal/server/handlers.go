package server

import (
	"errors"
	"io"
	"net/http"

	"supportviz/internal/pipeline"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *pipeline.Service
}

func NewHandler(svc *pipeline.Service) *Handler {
	return &Handler{svc: svc}
}

type updateRequest struct {
	ModelName       string `json:"model_name"`
	TaskDescription string `json:"task_description"`
}

type nodeInsightRequest struct {
	ModelName       string `json:"model_name"`
	NodeID          string `json:"node_id"`
	TaskDescription string `json:"task_description"`
}

// bindJSON treats an empty body as an empty object.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Models": h.svc.Catalog().Models()})
}

func (h *Handler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": h.svc.Catalog().Models()})
}

func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.svc.Update(c.Request.Context(), req.ModelName, req.TaskDescription))
}

func (h *Handler) NodeInsight(c *gin.Context) {
	var req nodeInsightRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.NodeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "node_id is required"})
		return
	}
	model := h.svc.Catalog().NormalizeModel(req.ModelName)
	c.JSON(http.StatusOK, h.svc.ExtractNodeInsight(c.Request.Context(), model, req.NodeID, nil, req.TaskDescription))
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
