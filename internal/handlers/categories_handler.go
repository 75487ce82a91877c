package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

type CategoriesHandler struct {
	repo *repository.CategoryRepository
}

func NewCategoriesHandler(repo *repository.CategoryRepository) *CategoriesHandler {
	return &CategoriesHandler{repo: repo}
}

// ListCategories returns active categories for the storefront navigation
func (h *CategoriesHandler) ListCategories(c *gin.Context) {
	categories, err := h.repo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve categories"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: categories})
}

// ListAllCategories returns every category for the admin back-office
func (h *CategoriesHandler) ListAllCategories(c *gin.Context) {
	categories, err := h.repo.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve categories"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: categories})
}

// CreateCategory creates a category
func (h *CategoriesHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	category := models.Category{
		Name:         req.Name,
		ParentID:     req.ParentID,
		Image:        req.Image,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := h.repo.Create(&category); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "CREATE_FAILED", Message: "Failed to create category"},
		})
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Data: category})
}

// UpdateCategory applies a partial update
func (h *CategoriesHandler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "Invalid category id"},
		})
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.ParentID != nil {
		updates["parent_id"] = *req.ParentID
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.DisplayOrder != nil {
		updates["display_order"] = *req.DisplayOrder
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "No fields to update"},
		})
		return
	}

	if err := h.repo.Update(id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Category not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UPDATE_FAILED", Message: "Failed to update category"},
		})
		return
	}

	category, err := h.repo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve updated category"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: category})
}

// DeleteCategory removes a category
func (h *CategoriesHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "Invalid category id"},
		})
		return
	}

	if err := h.repo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Category not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "DELETE_FAILED", Message: "Failed to delete category"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Category deleted"})
}
