package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ispcrm/internal/models"
	"ispcrm/internal/services"
)

type ProductHandler struct {
	service *services.ProductService
}

func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// @Summary      Create a product
// @Description  Manager only. Selling price defaults to HPP plus margin when omitted.
// @Tags         Products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product  body      models.Product  true  "Product payload"
// @Success      201      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Create(&product); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Product created", product)
}

// @Summary      Update a product
// @Description  Manager only. Existing deal items keep their price snapshots.
// @Tags         Products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int             true  "Product ID"
// @Param        product  body      models.Product  true  "Product payload"
// @Success      200      {object}  map[string]interface{}
// @Failure      404      {object}  map[string]string
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product.ID = id
	if err := h.service.Update(&product); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product updated", product)
}

// @Summary      Get a product
// @Tags         Products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := h.service.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", product)
}

// @Summary      List products
// @Tags         Products
// @Produce      json
// @Security     BearerAuth
// @Param        include_inactive  query     bool  false  "Include deactivated products (manager view)"
// @Param        page              query     int   false  "Page"
// @Param        limit             query     int   false  "Page size"
// @Success      200               {object}  map[string]interface{}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	page, limit := pageParams(c, 50)
	includeInactive := c.Query("include_inactive") == "true" && getActor(c).IsManager()

	products, err := h.service.List(includeInactive, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", products)
}

// @Summary      Deactivate a product
// @Description  Manager only. Soft delete; the product stops being sellable but stays referenced.
// @Tags         Products
// @Security     BearerAuth
// @Param        id  path  int  true  "Product ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [delete]
func (h *ProductHandler) Deactivate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Deactivate(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
