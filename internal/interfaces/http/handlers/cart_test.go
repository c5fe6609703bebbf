// internal/interfaces/http/handlers/cart_test.go
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/cart"
	"github.com/your-org/marketplace-backend/internal/domain/identity"
	"github.com/your-org/marketplace-backend/internal/domain/product"
	"github.com/your-org/marketplace-backend/internal/domain/store"
)

func newCartRouter(t *testing.T, sessionToken string) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&store.Store{}, &product.Product{}, &cart.Cart{}, &cart.CartItem{}))

	h := NewCartHandler(db, &config.Config{})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("session_token", sessionToken)
		c.Next()
	})
	r.GET("/cart", h.GetCart)
	return r, db
}

func TestGetCartAbsentCartReadsAsNull(t *testing.T) {
	r, _ := newCartRouter(t, "sess-a")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data, ok := body["data"]
	require.True(t, ok)
	assert.Equal(t, "null", string(data))
}

func TestGetCartReturnsCartContents(t *testing.T) {
	r, db := newCartRouter(t, "sess-a")

	st := &store.Store{OwnerUserID: 1, Name: "Cantina", Slug: "cantina"}
	require.NoError(t, db.Create(st).Error)
	p := &product.Product{StoreID: st.ID, Name: "Burger", Price: 2500, Available: true}
	require.NoError(t, db.Create(p).Error)

	svc := cart.NewService(db, &config.Config{})
	_, err := svc.AddItem(identity.FromSession("sess-a"), &cart.AddItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data *cart.CartResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Equal(t, 2, body.Data.ItemCount)
	assert.Equal(t, int64(5000), body.Data.Subtotal)
}
