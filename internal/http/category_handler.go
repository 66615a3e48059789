package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dataset-market/internal/service"
)

// CategoryHandler mantiene dependencias para endpoints de categorías.
type CategoryHandler struct {
	logger       *zap.Logger
	categoryServ *service.CategoryService
}

func NewCategoryHandler(logger *zap.Logger, categoryServ *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		logger:       logger,
		categoryServ: categoryServ,
	}
}

// Create maneja POST /categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create category request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	category, err := h.categoryServ.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.logger.Error("create category failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// List maneja GET /categories.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryServ.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Get maneja GET /categories/:id.
func (h *CategoryHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	category, err := h.categoryServ.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeCategoryError(c, err, "get category")
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// Update maneja PATCH /categories/:id.
func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update category request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	category, err := h.categoryServ.Update(c.Request.Context(), id, req.Name)
	if err != nil {
		h.writeCategoryError(c, err, "update category")
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// Delete maneja DELETE /categories/:id.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.categoryServ.Delete(c.Request.Context(), id); err != nil {
		h.writeCategoryError(c, err, "delete category")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CategoryHandler) writeCategoryError(c *gin.Context, err error, op string) {
	if errors.Is(err, service.ErrCategoryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	h.logger.Error(op+" failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
