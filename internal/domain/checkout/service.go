// internal/domain/checkout/service.go
package checkout

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

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

var validPaymentMethods = map[string]bool{
	"pix":  true,
	"cash": true,
	"card": true,
}

var validDeliveryTypes = map[string]bool{
	"delivery": true,
	"pickup":   true,
}

// Mailer sends the order notification to the store
type Mailer interface {
	SendOrderNotification(data *email.OrderNotificationData) error
}

// Service runs the cart-to-order commit pipeline
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
	carts  *cart.Service
	users  *user.Service
	mailer Mailer
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger, mailer Mailer) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: log,
		carts:  cart.NewService(db, cfg),
		users:  user.NewService(db, cfg),
		mailer: mailer,
	}
}

// CommitItem represents one requested order line
type CommitItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CommitRequest represents the order commit payload
type CommitRequest struct {
	StoreID         uint         `json:"store_id"`
	Items           []CommitItem `json:"items"`
	Subtotal        int64        `json:"subtotal"`
	DeliveryFee     int64        `json:"delivery_fee"`
	Total           int64        `json:"total"`
	CustomerName    string       `json:"customer_name"`
	CustomerPhone   string       `json:"customer_phone"`
	PaymentMethod   string       `json:"payment_method"`
	NeedsChange     bool         `json:"needs_change"`
	ChangeAmount    int64        `json:"change_amount"`
	DeliveryType    string       `json:"delivery_type"`
	DeliveryAddress string       `json:"delivery_address"`
}

// Commit turns a validated payload into an order. The pipeline checks
// the payload, the store, and per-line stock before touching the
// database, creates the order and decrements metered stock in one
// transaction, then fires best-effort side effects that never fail the
// request.
func (s *Service) Commit(ident identity.Identity, req *CommitRequest) (*order.Order, error) {
	if violations := s.validate(req); len(violations) > 0 {
		return nil, apperr.Validation(violations...)
	}

	var st store.Store
	if err := s.db.First(&st, req.StoreID).Error; err != nil {
		return nil, apperr.NotFound("store")
	}

	if !st.IsOpen {
		return nil, apperr.BusinessRule("store is closed")
	}

	products, err := s.loadProducts(req)
	if err != nil {
		return nil, err
	}

	if shortages := s.checkLines(req, products); len(shortages) > 0 {
		return nil, apperr.BusinessRule("order cannot be fulfilled", shortages...)
	}

	o := s.buildOrder(ident, req, &st, products)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		number := o.GenerateOrderNumber()
		if err := tx.Model(o).Update("order_number", number).Error; err != nil {
			return err
		}
		o.OrderNumber = number

		// A failed decrement must not lose the order; log it and let
		// stock drift surface in reconciliation.
		for _, line := range req.Items {
			p := products[line.ProductID]
			if !p.IsMetered() {
				continue
			}
			err := tx.Model(&product.Product{}).
				Where("id = ?", p.ID).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity)).Error
			if err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"order_id":   o.ID,
					"product_id": p.ID,
				}).Error("stock decrement failed")
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal("failed to create order", err)
	}

	s.runIsolated("sales_log", func() error {
		return s.writeSalesLog(o, &st)
	})
	s.runIsolated("store_notification", func() error {
		return s.notifyStore(o, &st)
	})
	s.runIsolated("cart_cleanup", func() error {
		return s.carts.ClearForStore(ident, st.ID)
	})

	return o, nil
}

// validate collects every payload violation instead of stopping at the
// first one
func (s *Service) validate(req *CommitRequest) []string {
	var violations []string

	if req.StoreID == 0 {
		violations = append(violations, "store_id is required")
	}
	if len(req.Items) == 0 {
		violations = append(violations, "items must not be empty")
	}
	for i, item := range req.Items {
		if item.ProductID == 0 {
			violations = append(violations, fmt.Sprintf("items[%d].product_id is required", i))
		}
		if item.Quantity < 1 {
			violations = append(violations, fmt.Sprintf("items[%d].quantity must be at least 1", i))
		}
	}
	if req.Subtotal <= 0 {
		violations = append(violations, "subtotal must be positive")
	}
	if req.Total <= 0 {
		violations = append(violations, "total must be positive")
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		violations = append(violations, "customer_name is required")
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		violations = append(violations, "customer_phone is required")
	}
	if !validPaymentMethods[req.PaymentMethod] {
		violations = append(violations, fmt.Sprintf("invalid payment_method: %s", req.PaymentMethod))
	}
	if !validDeliveryTypes[req.DeliveryType] {
		violations = append(violations, fmt.Sprintf("invalid delivery_type: %s", req.DeliveryType))
	} else if req.DeliveryType == "delivery" && strings.TrimSpace(req.DeliveryAddress) == "" {
		violations = append(violations, "delivery_address is required for delivery orders")
	}

	return violations
}

func (s *Service) loadProducts(req *CommitRequest) (map[uint]product.Product, error) {
	ids := make([]uint, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}

	var list []product.Product
	err := s.db.Where("store_id = ? AND id IN ?", req.StoreID, ids).Find(&list).Error
	if err != nil {
		return nil, apperr.Internal("failed to load products", err)
	}

	products := make(map[uint]product.Product, len(list))
	for _, p := range list {
		products[p.ID] = p
	}
	return products, nil
}

// checkLines accumulates every line failure so the buyer sees all
// shortages at once. Nothing is mutated when any line fails.
func (s *Service) checkLines(req *CommitRequest, products map[uint]product.Product) []string {
	var shortages []string

	for _, line := range req.Items {
		p, ok := products[line.ProductID]
		if !ok {
			shortages = append(shortages,
				fmt.Sprintf("product %d not found in this store", line.ProductID))
			continue
		}
		if !p.Available {
			shortages = append(shortages, fmt.Sprintf("%s is unavailable", p.Name))
			continue
		}
		if !p.HasStock(line.Quantity) {
			shortages = append(shortages,
				fmt.Sprintf("insufficient stock for %s: have %d, want %d", p.Name, *p.Stock, line.Quantity))
		}
	}

	return shortages
}

// buildOrder freezes the item snapshot from current product data; the
// payload never dictates snapshot prices
func (s *Service) buildOrder(ident identity.Identity, req *CommitRequest, st *store.Store, products map[uint]product.Product) *order.Order {
	o := &order.Order{
		StoreID:         st.ID,
		Status:          order.StatusPending,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: s.customerAddress(ident, req),
		StoreName:       st.Name,
		StorePhone:      st.Phone,
		Subtotal:        req.Subtotal,
		DeliveryFee:     req.DeliveryFee,
		Total:           req.Total,
		PaymentMethod:   req.PaymentMethod,
		NeedsChange:     req.NeedsChange,
		ChangeAmount:    req.ChangeAmount,
		DeliveryType:    req.DeliveryType,
	}

	if ident.UserID != nil {
		o.UserID = ident.UserID
	} else {
		token := ident.SessionToken
		o.SessionToken = &token
	}

	for _, line := range req.Items {
		p := products[line.ProductID]
		o.Items = append(o.Items, order.OrderItem{
			ProductID:  p.ID,
			Name:       p.Name,
			Price:      p.Price,
			Quantity:   line.Quantity,
			TotalPrice: p.Price * int64(line.Quantity),
		})
	}

	return o
}

// customerAddress composes the buyer address string best-effort
func (s *Service) customerAddress(ident identity.Identity, req *CommitRequest) string {
	if req.DeliveryAddress != "" {
		return req.DeliveryAddress
	}
	if ident.UserID != nil {
		if addr, err := s.users.DefaultAddress(*ident.UserID); err == nil {
			return addr.Format()
		}
	}
	return ""
}

func (s *Service) writeSalesLog(o *order.Order, st *store.Store) error {
	summary := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		summary = append(summary, fmt.Sprintf("%dx %s", item.Quantity, item.Name))
	}

	entry := order.SalesLog{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		StoreID:       st.ID,
		StoreName:     st.Name,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		ItemsSummary:  strings.Join(summary, "; "),
		Subtotal:      o.Subtotal,
		DeliveryFee:   o.DeliveryFee,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
	}

	if addr := st.FormatAddress(); addr != "" {
		entry.StoreAddress = &addr
	}
	if o.CustomerAddress != "" {
		addr := o.CustomerAddress
		entry.CustomerAddress = &addr
	}

	return s.db.Create(&entry).Error
}

func (s *Service) notifyStore(o *order.Order, st *store.Store) error {
	if st.Email == "" {
		return nil
	}

	data := &email.OrderNotificationData{
		To:            st.Email,
		StoreName:     st.Name,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Address:       o.CustomerAddress,
		DeliveryType:  o.DeliveryType,
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total,
	}
	for _, item := range o.Items {
		data.Items = append(data.Items, email.OrderNotificationItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	return s.mailer.SendOrderNotification(data)
}

// runIsolated executes a post-commit step inside its own failure
// boundary. Errors and panics are logged and never reach the caller.
func (s *Service) runIsolated(step string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("step", step).Errorf("post-commit step panicked: %v", r)
		}
	}()

	if err := fn(); err != nil {
		s.logger.WithError(err).WithField("step", step).Error("post-commit step failed")
	}
}
