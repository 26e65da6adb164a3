package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ispcrm/internal/models"
	"ispcrm/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

// @Summary      Create a user
// @Description  Manager only. Role defaults to SALES.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user  body      createUserRequest  true  "User payload"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleSales
	}
	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  role,
	}
	if err := h.service.CreateUser(user, req.Password); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "User created", user)
}

// @Summary      Get a user
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.service.GetUserByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	respond(c, http.StatusOK, "OK", user)
}

// @Summary      List users
// @Description  Manager only.
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  map[string]interface{}
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	page, limit := pageParams(c, 10)

	users, err := h.service.ListUsers(limit, (page-1)*limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", users)
}
