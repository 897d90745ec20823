package handler

import (
	"context"
	"net/http"

	"github.com/gameshop/backend/internal/application/catalog"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CatalogService is the part of the catalog the shop endpoints use
type CatalogService interface {
	ListShops() []catalog.ShopResponse
	GetShop(id string) (*catalog.ShopResponse, error)
	ListProducts(shopID string) ([]catalog.ProductResponse, error)
	GetProduct(shopID, productID string) (*catalog.ProductResponse, error)
	SetPrice(ctx context.Context, shopID, productID string, tradeType product.TradeType, price decimal.Decimal) (*catalog.ProductResponse, error)
}

// ShopHandler serves shops and their products
type ShopHandler struct {
	BaseHandler
	catalog CatalogService
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(catalog CatalogService) *ShopHandler {
	return &ShopHandler{catalog: catalog}
}

// RegisterRoutes mounts the shop endpoints
func (h *ShopHandler) RegisterRoutes(rg *gin.RouterGroup) {
	shops := rg.Group("/shops")
	shops.GET("", h.ListShops)
	shops.GET("/:shop", h.GetShop)
	shops.GET("/:shop/products", h.ListProducts)
	shops.GET("/:shop/products/:product", h.GetProduct)
	shops.PUT("/:shop/products/:product/price", h.SetPrice)
}

// SetPriceRequest changes one trade direction of a product
type SetPriceRequest struct {
	TradeType product.TradeType `json:"trade_type" binding:"required,oneof=buy sell"`
	// Price below zero disables the direction
	Price *decimal.Decimal `json:"price" binding:"required"`
}

// ListShops godoc
// @Summary      List shops
// @Tags         shops
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalog.ShopResponse}
// @Router       /shops [get]
func (h *ShopHandler) ListShops(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewListResponse(h.catalog.ListShops()))
}

// GetShop godoc
// @Summary      Get a shop
// @Tags         shops
// @Produce      json
// @Param        shop path string true "Shop ID"
// @Success      200 {object} dto.Response{data=catalog.ShopResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shops/{shop} [get]
func (h *ShopHandler) GetShop(c *gin.Context) {
	shop, err := h.catalog.GetShop(c.Param("shop"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shop)
}

// ListProducts godoc
// @Summary      List the products of a shop
// @Tags         products
// @Produce      json
// @Param        shop path string true "Shop ID"
// @Success      200 {object} dto.Response{data=[]catalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shops/{shop}/products [get]
func (h *ShopHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Param("shop"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(products))
}

// GetProduct godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        shop    path string true "Shop ID"
// @Param        product path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shops/{shop}/products/{product} [get]
func (h *ShopHandler) GetProduct(c *gin.Context) {
	p, err := h.catalog.GetProduct(c.Param("shop"), c.Param("product"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// SetPrice godoc
// @Summary      Set a product price
// @Description  Stores a new buy or sell price, rounded to the product currency. A negative price disables the direction.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        shop    path string          true "Shop ID"
// @Param        product path string          true "Product ID"
// @Param        request body SetPriceRequest true "New price"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shops/{shop}/products/{product}/price [put]
func (h *ShopHandler) SetPrice(c *gin.Context) {
	var req SetPriceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.catalog.SetPrice(c.Request.Context(), c.Param("shop"), c.Param("product"), req.TradeType, *req.Price)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}
