// internal/domain/cart/service_test.go
package cart

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/identity"
	"github.com/your-org/marketplace-backend/internal/domain/product"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/pkg/apperr"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&store.Store{}, &product.Product{}, &Cart{}, &CartItem{}))

	return NewService(db, &config.Config{}), db
}

// seedStore forces is_open with an explicit update so a closed store is
// not silently reopened by the column default on insert
func seedStore(t *testing.T, db *gorm.DB, isOpen bool) *store.Store {
	t.Helper()

	var count int64
	db.Model(&store.Store{}).Count(&count)

	st := &store.Store{
		OwnerUserID: 1,
		Name:        fmt.Sprintf("Store %d", count+1),
		Slug:        fmt.Sprintf("store-%d", count+1),
	}
	require.NoError(t, db.Create(st).Error)
	require.NoError(t, db.Model(st).Update("is_open", isOpen).Error)
	st.IsOpen = isOpen
	return st
}

func seedProduct(t *testing.T, db *gorm.DB, storeID uint, name string, price int64, stock *int) *product.Product {
	t.Helper()

	p := &product.Product{
		StoreID:   storeID,
		Name:      name,
		Price:     price,
		Available: true,
		Stock:     stock,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func intPtr(v int) *int { return &v }

func TestAddItemCreatesCartWithOwner(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)

	resp, err := svc.AddItem(identity.FromSession("sess-a"), &AddItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, st.ID, resp.StoreID)
	assert.Equal(t, 2, resp.ItemCount)
	assert.Equal(t, int64(5000), resp.Subtotal)

	var c Cart
	require.NoError(t, db.First(&c).Error)
	require.NotNil(t, c.OwnerSessionToken)
	assert.Equal(t, "sess-a", *c.OwnerSessionToken)
	assert.Nil(t, c.OwnerUserID)
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)

	resp, err := svc.AddItem(identity.FromUser(7), &AddItemRequest{ProductID: p.ID})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.ItemCount)
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)
	ident := identity.FromSession("sess-a")

	_, err := svc.AddItem(ident, &AddItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	resp, err := svc.AddItem(ident, &AddItemRequest{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, 5, resp.Items[0].Quantity)

	var count int64
	db.Model(&CartItem{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAddItemRejectsSecondStore(t *testing.T) {
	svc, db := newTestService(t)
	first := seedStore(t, db, true)
	second := seedStore(t, db, true)
	burger := seedProduct(t, db, first.ID, "Burger", 2500, nil)
	pizza := seedProduct(t, db, second.ID, "Pizza", 4000, nil)
	ident := identity.FromSession("sess-a")

	_, err := svc.AddItem(ident, &AddItemRequest{ProductID: burger.ID})
	require.NoError(t, err)

	_, err = svc.AddItem(ident, &AddItemRequest{ProductID: pizza.ID})
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindBusinessRule, appErr.Kind)
}

func TestAddItemRejectsClosedStore(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, false)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)

	_, err := svc.AddItem(identity.FromSession("sess-a"), &AddItemRequest{ProductID: p.ID})
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindBusinessRule, appErr.Kind)
	assert.Equal(t, "store is closed", appErr.Message)

	var carts int64
	db.Model(&Cart{}).Count(&carts)
	assert.Equal(t, int64(0), carts)
}

func TestAddItemRejectsUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddItem(identity.FromSession("sess-a"), &AddItemRequest{ProductID: 99})
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)
}

func TestAddItemRejectsOutOfStock(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, intPtr(0))

	_, err := svc.AddItem(identity.FromSession("sess-a"), &AddItemRequest{ProductID: p.ID})
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindBusinessRule, appErr.Kind)
}

func TestAddItemAllowsUnmeteredStock(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)

	_, err := svc.AddItem(identity.FromSession("sess-a"), &AddItemRequest{ProductID: p.ID, Quantity: 500})
	assert.NoError(t, err)
}

func TestGetReturnsNilForAbsentCart(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Get(identity.FromSession("nobody"))
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestCartsAreIsolatedByOwner(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)

	_, err := svc.AddItem(identity.FromSession("sess-a"), &AddItemRequest{ProductID: p.ID})
	require.NoError(t, err)

	resp, err := svc.Get(identity.FromSession("sess-b"))
	require.NoError(t, err)
	assert.Nil(t, resp)

	resp, err = svc.Get(identity.FromUser(1))
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestUpdateQuantityUnknownItem(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)
	ident := identity.FromSession("sess-a")

	_, err := svc.AddItem(ident, &AddItemRequest{ProductID: p.ID})
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ident, 999, &UpdateItemRequest{Quantity: 3})
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)
}

func TestMutatingForeignCartItemIsForbidden(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, true)
	burger := seedProduct(t, db, st.ID, "Burger", 2500, nil)
	fries := seedProduct(t, db, st.ID, "Fries", 1000, nil)

	owner := identity.FromSession("sess-a")
	ownerResp, err := svc.AddItem(owner, &AddItemRequest{ProductID: burger.ID, Quantity: 2})
	require.NoError(t, err)
	foreignItemID := ownerResp.Items[0].ID

	intruder := identity.FromSession("sess-b")
	_, err = svc.AddItem(intruder, &AddItemRequest{ProductID: fries.ID})
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(intruder, foreignItemID, &UpdateItemRequest{Quantity: 9})
	require.Error(t, err)
	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindPermissionDenied, appErr.Kind)

	_, err = svc.RemoveItem(intruder, foreignItemID)
	require.Error(t, err)
	appErr, ok = apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindPermissionDenied, appErr.Kind)

	// The owner's line is untouched
	resp, err := svc.Get(owner)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
}

func TestRemoveLastItemDeletesCart(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)
	ident := identity.FromSession("sess-a")

	resp, err := svc.AddItem(ident, &AddItemRequest{ProductID: p.ID})
	require.NoError(t, err)

	result, err := svc.RemoveItem(ident, resp.Items[0].ID)
	require.NoError(t, err)
	assert.Nil(t, result)

	var carts int64
	db.Model(&Cart{}).Count(&carts)
	assert.Equal(t, int64(0), carts)
}

func TestClearIsIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)
	ident := identity.FromSession("sess-a")

	_, err := svc.AddItem(ident, &AddItemRequest{ProductID: p.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ident))
	require.NoError(t, svc.Clear(ident))

	var carts, items int64
	db.Model(&Cart{}).Count(&carts)
	db.Model(&CartItem{}).Count(&items)
	assert.Equal(t, int64(0), carts)
	assert.Equal(t, int64(0), items)
}

func TestClearForStoreSkipsOtherStore(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)
	ident := identity.FromSession("sess-a")

	_, err := svc.AddItem(ident, &AddItemRequest{ProductID: p.ID})
	require.NoError(t, err)

	require.NoError(t, svc.ClearForStore(ident, st.ID+1))

	resp, err := svc.Get(ident)
	require.NoError(t, err)
	require.NotNil(t, resp)

	require.NoError(t, svc.ClearForStore(ident, st.ID))

	resp, err = svc.Get(ident)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestMergeOnLoginReassignsSessionCart(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)

	_, err := svc.AddItem(identity.FromSession("sess-a"), &AddItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.MergeOnLogin(42, "sess-a"))

	resp, err := svc.Get(identity.FromUser(42))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 2, resp.ItemCount)

	resp, err = svc.Get(identity.FromSession("sess-a"))
	require.NoError(t, err)
	assert.Nil(t, resp)

	var c Cart
	require.NoError(t, db.First(&c).Error)
	assert.Nil(t, c.OwnerSessionToken)
}

func TestMergeOnLoginSumsSameStoreQuantities(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, true)
	burger := seedProduct(t, db, st.ID, "Burger", 2500, nil)
	fries := seedProduct(t, db, st.ID, "Fries", 1000, nil)

	_, err := svc.AddItem(identity.FromUser(42), &AddItemRequest{ProductID: burger.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.AddItem(identity.FromSession("sess-a"), &AddItemRequest{ProductID: burger.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(identity.FromSession("sess-a"), &AddItemRequest{ProductID: fries.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.MergeOnLogin(42, "sess-a"))

	resp, err := svc.Get(identity.FromUser(42))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 4, resp.ItemCount)
	require.Len(t, resp.Items, 2)

	var carts int64
	db.Model(&Cart{}).Count(&carts)
	assert.Equal(t, int64(1), carts)
}

func TestMergeOnLoginLeavesCrossStoreCart(t *testing.T) {
	svc, db := newTestService(t)
	first := seedStore(t, db, true)
	second := seedStore(t, db, true)
	burger := seedProduct(t, db, first.ID, "Burger", 2500, nil)
	pizza := seedProduct(t, db, second.ID, "Pizza", 4000, nil)

	_, err := svc.AddItem(identity.FromUser(42), &AddItemRequest{ProductID: burger.ID})
	require.NoError(t, err)
	_, err = svc.AddItem(identity.FromSession("sess-a"), &AddItemRequest{ProductID: pizza.ID})
	require.NoError(t, err)

	require.NoError(t, svc.MergeOnLogin(42, "sess-a"))

	sessionResp, err := svc.Get(identity.FromSession("sess-a"))
	require.NoError(t, err)
	require.NotNil(t, sessionResp)
	assert.Equal(t, second.ID, sessionResp.StoreID)

	userResp, err := svc.Get(identity.FromUser(42))
	require.NoError(t, err)
	require.NotNil(t, userResp)
	assert.Equal(t, first.ID, userResp.StoreID)
}

func TestMergeOnLoginNoSessionCart(t *testing.T) {
	svc, _ := newTestService(t)

	assert.NoError(t, svc.MergeOnLogin(42, "never-used"))
	assert.NoError(t, svc.MergeOnLogin(42, ""))
}
