package handlers

import (
	"errors"
	"log"
	"net/http"

	"quizhub-service/internal/models"
	"quizhub-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type CategoryHandler struct {
	service *service.CategoryService
}

func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: categoryService}
}

// ListCategories returns every category with its active quiz count.
// GET /public/quiz/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.List(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list categories: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// GetCategory returns one category by slug.
// GET /public/quiz/categories/:slug
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found."})
			return
		}
		log.Printf("Failed to load category %s: %v", c.Param("slug"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load category"})
		return
	}

	c.JSON(http.StatusOK, category)
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// CreateCategory stores a new category, deriving its slug from the name.
// POST /protected/quiz/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := &models.Category{
		Name:        req.Name,
		Icon:        req.Icon,
		Description: req.Description,
	}
	if err := h.service.Create(c.Request.Context(), category); err != nil {
		log.Printf("Failed to create category: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Category created",
		"slug":    category.Slug,
	})
}

// UpdateCategory edits a category's display fields. The slug is fixed
// once created; quizzes snapshot it.
// PUT /protected/quiz/categories/:slug
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req struct {
		Name        *string `json:"name"`
		Icon        *string `json:"icon"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{}
	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.Icon != nil {
		update["icon"] = *req.Icon
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}

	if err := h.service.Update(c.Request.Context(), c.Param("slug"), update); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found."})
			return
		}
		log.Printf("Failed to update category %s: %v", c.Param("slug"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category updated"})
}

// DeleteCategory removes a category. Quizzes keep the snapshotted name.
// DELETE /protected/quiz/categories/:slug
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found."})
			return
		}
		log.Printf("Failed to delete category %s: %v", c.Param("slug"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
