// internal/pkg/email/types.go
package email

import "fmt"

// EmailType categorizes outgoing emails
type EmailType string

const (
	EmailTypeOrderNotification EmailType = "order_notification"
	EmailTypeStoreRegistered   EmailType = "store_registered"
)

// Email represents an outgoing email message
type Email struct {
	To          []string
	Subject     string
	HTMLContent string
	Type        EmailType
}

// OrderNotificationItem is one order line rendered in the notification
type OrderNotificationItem struct {
	Name     string
	Quantity int
	Price    int64 // In cents
}

// PriceFormatted renders the unit price for templates
func (i OrderNotificationItem) PriceFormatted() string {
	return formatMoney(i.Price)
}

// OrderNotificationData carries everything the store notification needs
type OrderNotificationData struct {
	To            string
	StoreName     string
	OrderNumber   string
	CustomerName  string
	CustomerPhone string
	Address       string
	DeliveryType  string
	PaymentMethod string
	Total         int64 // In cents
	Items         []OrderNotificationItem
}

// TotalFormatted renders the order total for templates
func (d OrderNotificationData) TotalFormatted() string {
	return formatMoney(d.Total)
}

// StoreRegisteredData carries the admin notice about a new store
type StoreRegisteredData struct {
	StoreName  string
	StoreSlug  string
	OwnerEmail string
}

func formatMoney(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}
