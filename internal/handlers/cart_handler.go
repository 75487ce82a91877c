package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// CartTokenHeader carries the opaque client-held cart identifier. The
// storefront has no accounts; the browser generates a token once and sends it
// with every cart request.
const CartTokenHeader = "X-Cart-Token"

type CartHandler struct {
	carts    *repository.CartRepository
	products *repository.ProductRepository
}

func NewCartHandler(carts *repository.CartRepository, products *repository.ProductRepository) *CartHandler {
	return &CartHandler{carts: carts, products: products}
}

func (h *CartHandler) cartToken(c *gin.Context) (string, bool) {
	token := c.GetHeader(CartTokenHeader)
	if token == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "MISSING_CART_TOKEN", Message: "X-Cart-Token header is required"},
		})
		return "", false
	}
	return token, true
}

// GetCart returns the cart with product details joined in. Lines whose
// product no longer exists or was deactivated are dropped from the response.
func (h *CartHandler) GetCart(c *gin.Context) {
	token, ok := h.cartToken(c)
	if !ok {
		return
	}

	cart, err := h.carts.GetOrCreateByToken(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve cart"},
		})
		return
	}

	response, err := h.buildCartResponse(cart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve cart"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: response})
}

func (h *CartHandler) buildCartResponse(cart *models.Cart) (*models.CartResponse, error) {
	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := h.products.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	response := &models.CartResponse{Token: cart.Token, Items: []models.CartItemResponse{}}
	for _, item := range cart.Items {
		product, ok := byID[item.ProductID]
		if !ok || !product.IsActive {
			continue
		}
		line := models.CartItemResponse{
			ProductID: product.ID,
			Name:      product.Name,
			Slug:      product.Slug,
			Price:     product.Price,
			Unit:      product.Unit,
			Stock:     product.Stock,
			Quantity:  item.Quantity,
			LineTotal: product.Price * float64(item.Quantity),
		}
		response.Items = append(response.Items, line)
		response.Subtotal += line.LineTotal
	}
	return response, nil
}

// AddItem adds a product to the cart, merging with an existing line
func (h *CartHandler) AddItem(c *gin.Context) {
	token, ok := h.cartToken(c)
	if !ok {
		return
	}

	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	product, err := h.products.GetByID(req.ProductID)
	if err != nil || !product.IsActive {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "NOT_FOUND", Message: "Product not found"},
		})
		return
	}

	cart, err := h.carts.GetOrCreateByToken(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UPDATE_FAILED", Message: "Failed to update cart"},
		})
		return
	}

	if err := h.carts.AddItem(cart.ID, req.ProductID, req.Quantity); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UPDATE_FAILED", Message: "Failed to update cart"},
		})
		return
	}
	h.respondWithCart(c, token)
}

// UpdateItem sets a line's quantity; zero removes it
func (h *CartHandler) UpdateItem(c *gin.Context) {
	token, ok := h.cartToken(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "Invalid product id"},
		})
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	cart, err := h.carts.GetOrCreateByToken(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UPDATE_FAILED", Message: "Failed to update cart"},
		})
		return
	}

	if err := h.carts.SetItemQuantity(cart.ID, productID, req.Quantity); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UPDATE_FAILED", Message: "Failed to update cart"},
		})
		return
	}
	h.respondWithCart(c, token)
}

// RemoveItem deletes a product line from the cart
func (h *CartHandler) RemoveItem(c *gin.Context) {
	token, ok := h.cartToken(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "Invalid product id"},
		})
		return
	}

	cart, err := h.carts.GetOrCreateByToken(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UPDATE_FAILED", Message: "Failed to update cart"},
		})
		return
	}

	if err := h.carts.RemoveItem(cart.ID, productID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UPDATE_FAILED", Message: "Failed to update cart"},
		})
		return
	}
	h.respondWithCart(c, token)
}

func (h *CartHandler) respondWithCart(c *gin.Context, token string) {
	cart, err := h.carts.GetOrCreateByToken(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve cart"},
		})
		return
	}
	response, err := h.buildCartResponse(cart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve cart"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: response})
}
