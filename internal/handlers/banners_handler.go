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

type BannersHandler struct {
	repo *repository.BannerRepository
}

func NewBannersHandler(repo *repository.BannerRepository) *BannersHandler {
	return &BannersHandler{repo: repo}
}

// ListBanners returns active banners for the storefront home page
func (h *BannersHandler) ListBanners(c *gin.Context) {
	banners, err := h.repo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve banners"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: banners})
}

// ListAllBanners returns every banner for the admin back-office
func (h *BannersHandler) ListAllBanners(c *gin.Context) {
	banners, err := h.repo.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve banners"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: banners})
}

// CreateBanner creates a banner
func (h *BannersHandler) CreateBanner(c *gin.Context) {
	var req models.CreateBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	banner := models.Banner{
		Title:    req.Title,
		Image:    req.Image,
		Link:     req.Link,
		Position: req.Position,
		IsActive: true,
	}
	if req.IsActive != nil {
		banner.IsActive = *req.IsActive
	}

	if err := h.repo.Create(&banner); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "CREATE_FAILED", Message: "Failed to create banner"},
		})
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Data: banner})
}

// UpdateBanner applies a partial update
func (h *BannersHandler) UpdateBanner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "Invalid banner id"},
		})
		return
	}

	var req models.UpdateBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.Link != nil {
		updates["link"] = *req.Link
	}
	if req.Position != nil {
		updates["position"] = *req.Position
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
				Error:   models.Error{Code: "NOT_FOUND", Message: "Banner not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UPDATE_FAILED", Message: "Failed to update banner"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Banner updated"})
}

// DeleteBanner removes a banner
func (h *BannersHandler) DeleteBanner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "Invalid banner id"},
		})
		return
	}

	if err := h.repo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Banner not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "DELETE_FAILED", Message: "Failed to delete banner"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Banner deleted"})
}
