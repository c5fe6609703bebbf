// internal/domain/order/service_test.go
package order

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/identity"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/pkg/apperr"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&store.Store{}, &Order{}, &OrderItem{}, &SalesLog{}))

	return NewService(db, &config.Config{}), db
}

func seedStore(t *testing.T, db *gorm.DB, ownerID uint) *store.Store {
	t.Helper()

	st := &store.Store{
		OwnerUserID: ownerID,
		Name:        "Cantina da Praca",
		Slug:        "cantina-da-praca",
		IsOpen:      true,
	}
	require.NoError(t, db.Create(st).Error)
	return st
}

func seedOrder(t *testing.T, db *gorm.DB, storeID uint, status Status, ident identity.Identity) *Order {
	t.Helper()

	o := &Order{
		OrderNumber:   "ORD-20260101-00001",
		StoreID:       storeID,
		Status:        status,
		CustomerName:  "Maria Silva",
		CustomerPhone: "11 98888-7777",
		Subtotal:      5000,
		Total:         5000,
		PaymentMethod: "pix",
		DeliveryType:  "pickup",
	}
	if ident.UserID != nil {
		o.UserID = ident.UserID
	} else if ident.SessionToken != "" {
		token := ident.SessionToken
		o.SessionToken = &token
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		next    Status
		want    bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending skips ahead", StatusPending, StatusDelivering, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"preparing back to confirmed", StatusPreparing, StatusConfirmed, true},
		{"same status", StatusPreparing, StatusPreparing, false},
		{"unknown status", StatusPending, Status("shipped"), false},
		{"completed is terminal", StatusCompleted, StatusPending, false},
		{"cancelled is terminal", StatusCancelled, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.current}
			assert.Equal(t, tt.want, o.CanTransitionTo(tt.next))
		})
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, 1)
	o := seedOrder(t, db, st.ID, StatusPending, identity.FromSession("sess-a"))

	_, err := svc.UpdateStatus(o.ID, 1, &UpdateStatusRequest{Status: "shipped"})
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
}

func TestUpdateStatusRequiresStoreOwner(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, 1)
	o := seedOrder(t, db, st.ID, StatusPending, identity.FromSession("sess-a"))

	_, err := svc.UpdateStatus(o.ID, 2, &UpdateStatusRequest{Status: "confirmed"})
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindPermissionDenied, appErr.Kind)
}

func TestUpdateStatusPersistsTransition(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, 1)
	o := seedOrder(t, db, st.ID, StatusPending, identity.FromSession("sess-a"))

	updated, err := svc.UpdateStatus(o.ID, 1, &UpdateStatusRequest{Status: "preparing"})
	require.NoError(t, err)
	assert.Equal(t, StatusPreparing, updated.Status)

	var reloaded Order
	require.NoError(t, db.First(&reloaded, o.ID).Error)
	assert.Equal(t, StatusPreparing, reloaded.Status)
}

func TestUpdateStatusBlocksTerminalOrders(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, 1)
	o := seedOrder(t, db, st.ID, StatusCompleted, identity.FromSession("sess-a"))

	_, err := svc.UpdateStatus(o.ID, 1, &UpdateStatusRequest{Status: "pending"})
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindBusinessRule, appErr.Kind)
}

func TestGetForBuyerHidesForeignOrders(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, 1)
	o := seedOrder(t, db, st.ID, StatusPending, identity.FromSession("sess-a"))

	_, err := svc.GetForBuyer(identity.FromSession("sess-b"), o.ID)
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)

	got, err := svc.GetForBuyer(identity.FromSession("sess-a"), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestGetForReceiptAllowsBuyerAndOwner(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, 7)
	o := seedOrder(t, db, st.ID, StatusPending, identity.FromSession("sess-a"))

	// Buyer session
	got, err := svc.GetForReceipt(o.ID, identity.FromSession("sess-a"))
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	// Store owner
	got, err = svc.GetForReceipt(o.ID, identity.FromUser(7))
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	// Unrelated user
	_, err = svc.GetForReceipt(o.ID, identity.FromUser(9))
	require.Error(t, err)

	appErr, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindPermissionDenied, appErr.Kind)
}

func TestListForBuyerScopesByIdentity(t *testing.T) {
	svc, db := newTestService(t)
	st := seedStore(t, db, 1)
	seedOrder(t, db, st.ID, StatusPending, identity.FromSession("sess-a"))

	other := &Order{
		OrderNumber:   "ORD-20260101-00002",
		StoreID:       st.ID,
		Status:        StatusPending,
		CustomerName:  "Joao Souza",
		CustomerPhone: "11 97777-6666",
		Subtotal:      1000,
		Total:         1000,
		PaymentMethod: "cash",
		DeliveryType:  "pickup",
	}
	token := "sess-b"
	other.SessionToken = &token
	require.NoError(t, db.Create(other).Error)

	resp, err := svc.ListForBuyer(identity.FromSession("sess-a"), &ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "ORD-20260101-00001", resp.Orders[0].OrderNumber)
}
