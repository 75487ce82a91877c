package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

type ProductsHandler struct {
	repo *repository.ProductRepository
}

func NewProductsHandler(repo *repository.ProductRepository) *ProductsHandler {
	return &ProductsHandler{repo: repo}
}

// ListProducts retrieves the catalog with filtering and pagination.
// Public storefront requests only see active products; the admin listing
// passes activeOnly=false.
func (h *ProductsHandler) ListProducts(activeOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		req := &models.ListProductsRequest{
			Search:    c.Query("search"),
			TimeSlot:  c.Query("timeSlot"),
			SortBy:    c.Query("sortBy"),
			SortOrder: c.Query("sortOrder"),
			Page:      page,
			Limit:     limit,
		}
		if categoryID := c.Query("categoryId"); categoryID != "" {
			id, err := uuid.Parse(categoryID)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{
					Success: false,
					Error:   models.Error{Code: "VALIDATION_ERROR", Message: "Invalid category id", Field: "categoryId"},
				})
				return
			}
			req.CategoryID = &id
		}
		if featured := c.Query("featured"); featured != "" {
			v := featured == "true"
			req.Featured = &v
		}
		if activeOnly {
			active := true
			req.Active = &active
		} else if raw := c.Query("active"); raw != "" {
			v := raw == "true"
			req.Active = &v
		}

		products, total, err := h.repo.List(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve products"},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"data":       products,
			"pagination": models.NewPaginationInfo(req.Page, req.Limit, total),
		})
	}
}

// GetProductBySlug retrieves a single product for the storefront detail page
func (h *ProductsHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Product not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve product"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: product})
}

// CreateProduct creates a new product from the admin back-office
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	product := models.Product{
		Name:          req.Name,
		CategoryID:    req.CategoryID,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Discount:      models.ComputeDiscount(req.Price, req.OriginalPrice),
		Stock:         req.Stock,
		Unit:          req.Unit,
		IsActive:      true,
		Images:        models.StringArray(req.Images),
		Tags:          models.StringArray(req.Tags),
		TimeSlots:     models.StringArray(req.TimeSlots),
	}
	if product.Unit == "" {
		product.Unit = models.DefaultUnit
	}
	if product.Images == nil {
		product.Images = models.StringArray{}
	}
	if product.Tags == nil {
		product.Tags = models.StringArray{}
	}
	if len(product.TimeSlots) == 0 {
		product.TimeSlots = models.StringArray{string(models.TimeSlotAllDay)}
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	if err := h.repo.Create(&product); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "CREATE_FAILED", Message: "Failed to create product"},
		})
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Data: product})
}

// UpdateProduct applies a partial update from the admin back-office
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "Invalid product id"},
		})
		return
	}

	var req models.UpdateProductRequest
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
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.OriginalPrice != nil {
		updates["original_price"] = *req.OriginalPrice
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.Images != nil {
		updates["images"] = models.StringArray(req.Images)
	}
	if req.Tags != nil {
		updates["tags"] = models.StringArray(req.Tags)
	}
	if req.TimeSlots != nil {
		updates["time_slots"] = models.StringArray(req.TimeSlots)
	}

	// Keep the derived discount in sync when either price changes
	if req.Price != nil || req.OriginalPrice != nil {
		current, err := h.repo.GetByID(id)
		if err != nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Product not found"},
			})
			return
		}
		price := current.Price
		originalPrice := current.OriginalPrice
		if req.Price != nil {
			price = *req.Price
		}
		if req.OriginalPrice != nil {
			originalPrice = req.OriginalPrice
		}
		updates["discount"] = models.ComputeDiscount(price, originalPrice)
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
				Error:   models.Error{Code: "NOT_FOUND", Message: "Product not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UPDATE_FAILED", Message: "Failed to update product"},
		})
		return
	}

	product, err := h.repo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve updated product"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: product})
}

// DeleteProduct removes a product
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "Invalid product id"},
		})
		return
	}

	if err := h.repo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Product not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "DELETE_FAILED", Message: "Failed to delete product"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Product deleted"})
}
