package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ispcrm/internal/models"
	"ispcrm/internal/services"
)

type LeadHandler struct {
	service *services.LeadService
}

func NewLeadHandler(service *services.LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

// @Summary      Create a lead
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        lead  body      models.Lead  true  "Lead payload"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var lead models.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Create(getActor(c), &lead); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Lead created", lead)
}

// @Summary      List leads
// @Description  Managers see every lead, sales reps only their own. Supports status, source and search filters.
// @Tags         Leads
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter"
// @Param        source  query     string  false  "Source filter"
// @Param        search  query     string  false  "Name/contact/email search"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  services.LeadPage
// @Router       /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	page, limit := pageParams(c, 10)
	f := services.LeadFilter{
		Status: c.Query("status"),
		Source: c.Query("source"),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}

	result, err := h.service.List(getActor(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary      Get a lead
// @Tags         Leads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Lead ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /leads/{id} [get]
func (h *LeadHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	lead, err := h.service.GetByID(getActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", lead)
}

// @Summary      Update a lead
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "Lead ID"
// @Param        lead  body      models.Lead  true  "Lead payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body models.Lead
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	body.ID = id

	updated, err := h.service.Update(getActor(c), &body)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Lead updated", updated)
}

// @Summary      Delete a lead
// @Tags         Leads
// @Security     BearerAuth
// @Param        id  path  int  true  "Lead ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(getActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateLeadStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary      Update lead status
// @Description  Applies one transition from the lead state machine. CONVERTED is reserved for the conversion endpoints.
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int                      true  "Lead ID"
// @Param        status  body      updateLeadStatusRequest  true  "Target status"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]string
// @Router       /leads/{id}/status [patch]
func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.UpdateStatus(getActor(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Lead status updated", updated)
}

// @Summary      Convert a lead to a customer
// @Description  Manager only. The lead must be QUALIFIED; conversion is one-shot.
// @Tags         Leads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Lead ID"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /leads/{id}/convert [post]
func (h *LeadHandler) Convert(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	customer, err := h.service.ConvertToCustomer(getActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Lead converted", customer)
}
