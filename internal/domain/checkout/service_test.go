// internal/domain/checkout/service_test.go
package checkout

import (
	"errors"
	"io"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/cart"
	"github.com/your-org/marketplace-backend/internal/domain/identity"
	"github.com/your-org/marketplace-backend/internal/domain/order"
	"github.com/your-org/marketplace-backend/internal/domain/product"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/domain/user"
	"github.com/your-org/marketplace-backend/internal/pkg/apperr"
	"github.com/your-org/marketplace-backend/internal/pkg/email"
)

type fakeMailer struct {
	sent []*email.OrderNotificationData
	err  error
}

func (m *fakeMailer) SendOrderNotification(data *email.OrderNotificationData) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, data)
	return nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *fakeMailer) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&user.User{}, &user.Address{},
		&store.Store{}, &product.Product{},
		&cart.Cart{}, &cart.CartItem{},
		&order.Order{}, &order.OrderItem{}, &order.SalesLog{},
	))

	log := logrus.New()
	log.SetOutput(io.Discard)

	mailer := &fakeMailer{}
	return NewService(db, &config.Config{}, log, mailer), db, mailer
}

// seedStore forces is_open with an explicit update because the column
// default would reopen a store created with the zero value
func seedStore(t *testing.T, db *gorm.DB, isOpen bool) *store.Store {
	t.Helper()

	st := &store.Store{
		OwnerUserID: 1,
		Name:        "Cantina da Praca",
		Slug:        "cantina-da-praca",
		Phone:       "11 99999-0000",
		Email:       "owner@cantina.example",
		City:        "Sao Paulo",
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

func validRequest(storeID uint, items ...CommitItem) *CommitRequest {
	return &CommitRequest{
		StoreID:       storeID,
		Items:         items,
		Subtotal:      5000,
		DeliveryFee:   500,
		Total:         5500,
		CustomerName:  "Maria Silva",
		CustomerPhone: "11 98888-7777",
		PaymentMethod: "pix",
		DeliveryType:  "pickup",
	}
}

func TestCommitCollectsAllPayloadViolations(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Commit(identity.FromSession("sess-a"), &CommitRequest{
		PaymentMethod: "crypto",
		DeliveryType:  "delivery",
	})
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)

	assert.Contains(t, appErr.Violations, "store_id is required")
	assert.Contains(t, appErr.Violations, "items must not be empty")
	assert.Contains(t, appErr.Violations, "subtotal must be positive")
	assert.Contains(t, appErr.Violations, "total must be positive")
	assert.Contains(t, appErr.Violations, "customer_name is required")
	assert.Contains(t, appErr.Violations, "customer_phone is required")
	assert.Contains(t, appErr.Violations, "invalid payment_method: crypto")
	assert.Contains(t, appErr.Violations, "delivery_address is required for delivery orders")
}

func TestCommitUnknownStore(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Commit(identity.FromSession("sess-a"),
		validRequest(99, CommitItem{ProductID: 1, Quantity: 1}))
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)
}

func TestCommitClosedStore(t *testing.T) {
	svc, db, _ := newTestService(t)
	st := seedStore(t, db, false)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)

	_, err := svc.Commit(identity.FromSession("sess-a"),
		validRequest(st.ID, CommitItem{ProductID: p.ID, Quantity: 1}))
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindBusinessRule, appErr.Kind)
	assert.Equal(t, "store is closed", appErr.Message)
}

func TestCommitAccumulatesLineShortages(t *testing.T) {
	svc, db, _ := newTestService(t)
	st := seedStore(t, db, true)
	low := seedProduct(t, db, st.ID, "Burger", 2500, intPtr(1))
	off := seedProduct(t, db, st.ID, "Pizza", 4000, nil)
	require.NoError(t, db.Model(off).Update("available", false).Error)

	_, err := svc.Commit(identity.FromSession("sess-a"), validRequest(st.ID,
		CommitItem{ProductID: low.ID, Quantity: 3},
		CommitItem{ProductID: off.ID, Quantity: 1},
		CommitItem{ProductID: 777, Quantity: 1},
	))
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindBusinessRule, appErr.Kind)
	assert.Equal(t, "order cannot be fulfilled", appErr.Message)
	assert.Contains(t, appErr.Violations, "insufficient stock for Burger: have 1, want 3")
	assert.Contains(t, appErr.Violations, "Pizza is unavailable")
	assert.Contains(t, appErr.Violations, "product 777 not found in this store")

	// Nothing committed, nothing decremented
	var orders int64
	db.Model(&order.Order{}).Count(&orders)
	assert.Equal(t, int64(0), orders)

	var reloaded product.Product
	require.NoError(t, db.First(&reloaded, low.ID).Error)
	require.NotNil(t, reloaded.Stock)
	assert.Equal(t, 1, *reloaded.Stock)
}

func TestCommitCreatesOrderAndDecrementsStock(t *testing.T) {
	svc, db, mailer := newTestService(t)
	st := seedStore(t, db, true)
	metered := seedProduct(t, db, st.ID, "Burger", 2500, intPtr(10))
	unmetered := seedProduct(t, db, st.ID, "Soda", 600, nil)

	ident := identity.FromSession("sess-a")
	placed, err := svc.Commit(ident, validRequest(st.ID,
		CommitItem{ProductID: metered.ID, Quantity: 2},
		CommitItem{ProductID: unmetered.ID, Quantity: 3},
	))
	require.NoError(t, err)

	assert.NotEmpty(t, placed.OrderNumber)
	assert.Equal(t, order.StatusPending, placed.Status)
	assert.Equal(t, st.Name, placed.StoreName)
	require.NotNil(t, placed.SessionToken)
	assert.Equal(t, "sess-a", *placed.SessionToken)

	var meteredAfter product.Product
	require.NoError(t, db.First(&meteredAfter, metered.ID).Error)
	require.NotNil(t, meteredAfter.Stock)
	assert.Equal(t, 8, *meteredAfter.Stock)

	var unmeteredAfter product.Product
	require.NoError(t, db.First(&unmeteredAfter, unmetered.ID).Error)
	assert.Nil(t, unmeteredAfter.Stock)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, st.Email, mailer.sent[0].To)
	assert.Equal(t, placed.OrderNumber, mailer.sent[0].OrderNumber)
}

func TestCommitFreezesSnapshotFromCurrentPrices(t *testing.T) {
	svc, db, _ := newTestService(t)
	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)

	req := validRequest(st.ID, CommitItem{ProductID: p.ID, Quantity: 2})
	placed, err := svc.Commit(identity.FromUser(5), req)
	require.NoError(t, err)

	require.Len(t, placed.Items, 1)
	assert.Equal(t, "Burger", placed.Items[0].Name)
	assert.Equal(t, int64(2500), placed.Items[0].Price)
	assert.Equal(t, int64(5000), placed.Items[0].TotalPrice)

	// A later price change never touches the frozen line
	require.NoError(t, db.Model(p).Update("price", 9900).Error)

	var item order.OrderItem
	require.NoError(t, db.Where("order_id = ?", placed.ID).First(&item).Error)
	assert.Equal(t, int64(2500), item.Price)
}

func TestCommitWritesSalesLog(t *testing.T) {
	svc, db, _ := newTestService(t)
	st := seedStore(t, db, true)
	burger := seedProduct(t, db, st.ID, "Burger", 2500, nil)
	soda := seedProduct(t, db, st.ID, "Soda", 600, nil)

	placed, err := svc.Commit(identity.FromSession("sess-a"), validRequest(st.ID,
		CommitItem{ProductID: burger.ID, Quantity: 2},
		CommitItem{ProductID: soda.ID, Quantity: 1},
	))
	require.NoError(t, err)

	var entry order.SalesLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, placed.ID, entry.OrderID)
	assert.Equal(t, placed.OrderNumber, entry.OrderNumber)
	assert.Equal(t, st.Name, entry.StoreName)
	assert.Equal(t, "2x Burger; 1x Soda", entry.ItemsSummary)
	assert.Equal(t, int64(5500), entry.Total)
}

func TestCommitClearsMatchingCart(t *testing.T) {
	svc, db, _ := newTestService(t)
	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)

	ident := identity.FromSession("sess-a")
	carts := cart.NewService(db, &config.Config{})
	_, err := carts.AddItem(ident, &cart.AddItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = svc.Commit(ident, validRequest(st.ID, CommitItem{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, err)

	resp, err := carts.Get(ident)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestCommitSucceedsWhenNotificationFails(t *testing.T) {
	svc, db, mailer := newTestService(t)
	mailer.err = errors.New("smtp down")

	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)

	placed, err := svc.Commit(identity.FromSession("sess-a"),
		validRequest(st.ID, CommitItem{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	assert.NotNil(t, placed)

	var orders int64
	db.Model(&order.Order{}).Count(&orders)
	assert.Equal(t, int64(1), orders)
}

func TestCommitSucceedsWhenSalesLogWriteFails(t *testing.T) {
	svc, db, _ := newTestService(t)
	st := seedStore(t, db, true)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)

	// Sabotage the sales log table so the insert fails after commit
	require.NoError(t, db.Migrator().DropTable(&order.SalesLog{}))

	placed, err := svc.Commit(identity.FromSession("sess-a"),
		validRequest(st.ID, CommitItem{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	require.NotNil(t, placed)
	assert.NotEmpty(t, placed.OrderNumber)

	var orders int64
	db.Model(&order.Order{}).Count(&orders)
	assert.Equal(t, int64(1), orders)
}

func TestCommitSkipsNotificationWithoutStoreEmail(t *testing.T) {
	svc, db, mailer := newTestService(t)
	st := seedStore(t, db, true)
	require.NoError(t, db.Model(st).Update("email", "").Error)
	p := seedProduct(t, db, st.ID, "Burger", 2500, nil)

	_, err := svc.Commit(identity.FromSession("sess-a"),
		validRequest(st.ID, CommitItem{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	assert.Empty(t, mailer.sent)
}
