package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ispcrm/internal/services"
)

type DealHandler struct {
	service *services.DealService
}

func NewDealHandler(service *services.DealService) *DealHandler {
	return &DealHandler{service: service}
}

// @Summary      Create a deal
// @Description  Creates a deal from a qualified lead or an existing customer. Items priced below the standard price push the deal into WAITING_APPROVAL.
// @Tags         Deals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        deal  body      services.CreateDealRequest  true  "Deal payload"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /deals [post]
func (h *DealHandler) Create(c *gin.Context) {
	var req services.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deal, err := h.service.Create(getActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Deal created", deal)
}

// @Summary      List deals
// @Description  Managers see every deal, sales reps only their own.
// @Tags         Deals
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  map[string]interface{}
// @Router       /deals [get]
func (h *DealHandler) List(c *gin.Context) {
	page, limit := pageParams(c, 20)

	deals, err := h.service.List(getActor(c), limit, (page-1)*limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", deals)
}

// @Summary      Get a deal
// @Description  Returns the deal with its line items and price-approval rows.
// @Tags         Deals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Deal ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /deals/{id} [get]
func (h *DealHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	detail, err := h.service.GetByID(getActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", detail)
}

// @Summary      Submit a deal for approval
// @Tags         Deals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Deal ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /deals/{id}/submit [patch]
func (h *DealHandler) Submit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deal, err := h.service.Submit(getActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Deal submitted", deal)
}

type decisionRequest struct {
	Note string `json:"note"`
}

// @Summary      Approve a deal
// @Description  Manager only. Resolves every pending price approval and moves the deal to APPROVED.
// @Tags         Deals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      int              true   "Deal ID"
// @Param        decision  body      decisionRequest  false  "Optional note"
// @Success      200       {object}  map[string]interface{}
// @Failure      400       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Router       /deals/{id}/approve [patch]
func (h *DealHandler) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req decisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	deal, err := h.service.Approve(getActor(c), id, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Deal approved", deal)
}

// @Summary      Reject a deal
// @Description  Manager only. Resolves every pending price approval and moves the deal to REJECTED.
// @Tags         Deals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      int              true   "Deal ID"
// @Param        decision  body      decisionRequest  false  "Optional note"
// @Success      200       {object}  map[string]interface{}
// @Failure      400       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Router       /deals/{id}/reject [patch]
func (h *DealHandler) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req decisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	deal, err := h.service.Reject(getActor(c), id, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Deal rejected", deal)
}

// @Summary      Activate services for an approved deal
// @Description  Creates one active service per deal item. A deal can be activated once.
// @Tags         Deals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Deal ID"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /deals/{id}/activate [post]
func (h *DealHandler) Activate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	created, err := h.service.Activate(getActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Services activated", created)
}
