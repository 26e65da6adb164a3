package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ispcrm/internal/services"
)

type CustomerHandler struct {
	service *services.CustomerService
}

func NewCustomerHandler(service *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// @Summary      List customers
// @Description  Active customers, i.e. customers with at least one approved deal. Sales reps see only their own.
// @Tags         Customers
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Name/code search"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  map[string]interface{}
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	page, limit := pageParams(c, 20)

	customers, err := h.service.ListActive(getActor(c), c.Query("search"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", customers)
}

// @Summary      Get a customer
// @Tags         Customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	customer, err := h.service.GetByID(getActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", customer)
}

// @Summary      List customer services
// @Description  Active services provisioned from approved deals.
// @Tags         Customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /customers/{id}/services [get]
func (h *CustomerHandler) ListServices(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	subs, err := h.service.ListServices(getActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", subs)
}
