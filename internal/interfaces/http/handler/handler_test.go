package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gameshop/backend/internal/application/catalog"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/interfaces/http/dto"
	"github.com/gameshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routeRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

func newTestRouter(handlers ...routeRegistrar) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// MockCatalogService is a mock implementation of CatalogService
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListShops() []catalog.ShopResponse {
	return m.Called().Get(0).([]catalog.ShopResponse)
}

func (m *MockCatalogService) GetShop(id string) (*catalog.ShopResponse, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ShopResponse), args.Error(1)
}

func (m *MockCatalogService) ListProducts(shopID string) ([]catalog.ProductResponse, error) {
	args := m.Called(shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ProductResponse), args.Error(1)
}

func (m *MockCatalogService) GetProduct(shopID, productID string) (*catalog.ProductResponse, error) {
	args := m.Called(shopID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductResponse), args.Error(1)
}

func (m *MockCatalogService) SetPrice(ctx context.Context, shopID, productID string, tradeType product.TradeType, price decimal.Decimal) (*catalog.ProductResponse, error) {
	args := m.Called(ctx, shopID, productID, tradeType, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductResponse), args.Error(1)
}

func stoneResponse() *catalog.ProductResponse {
	return &catalog.ProductResponse{
		ShopID:      "blocks",
		ID:          "stone",
		ContentKind: "item",
		Reference:   "stone",
		UnitAmount:  2,
		Currency:    "coins",
		PricingType: "flat",
		BuyPrice:    decimal.NewFromInt(10),
		SellPrice:   decimal.NewFromInt(4),
		Buyable:     true,
		Sellable:    true,
		Valid:       true,
	}
}
