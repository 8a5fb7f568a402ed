package handler

import (
	"net/http"

	"tradenet/internal/dto"
	"tradenet/internal/service"

	"github.com/gin-gonic/gin"
)

type NodesHandler struct{ svc service.NodeService }

func NewNodesHandler(svc service.NodeService) *NodesHandler {
	return &NodesHandler{svc: svc}
}

// Create POST /v1/network-nodes
func (h *NodesHandler) Create(c *gin.Context) {
	var req dto.NodeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List GET /v1/network-nodes?city=&node_type=&level=&supplier=
func (h *NodesHandler) List(c *gin.Context) {
	var filter dto.NodeFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get GET /v1/network-nodes/:id
func (h *NodesHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Replace PUT /v1/network-nodes/:id
func (h *NodesHandler) Replace(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.NodeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Replace(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Patch PATCH /v1/network-nodes/:id
func (h *NodesHandler) Patch(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.PatchNodeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Patch(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete DELETE /v1/network-nodes/:id
func (h *NodesHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearDebt POST /v1/network-nodes/clear-debt
func (h *NodesHandler) ClearDebt(c *gin.Context) {
	var req dto.ClearDebtRequest
	if !bindAndValidate(c, &req) {
		return
	}
	n, err := h.svc.ClearDebt(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ClearDebtResponse{Cleared: n})
}
