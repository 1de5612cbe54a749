package model

import "time"

// Derived order status values, see DeriveOrderStatus in the context stage.
const (
	OrderStatusCancelled        = "cancelled"
	OrderStatusDelivered        = "delivered"
	OrderStatusShipped          = "shipped"
	OrderStatusPartiallyShipped = "partially_shipped"
	OrderStatusProcessing       = "processing"
	OrderStatusPendingPayment   = "pending_payment"
	OrderStatusUnknown          = "unknown"
)

// LineItem is one purchased item on an order.
type LineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// OrderData is the normalized order record the context stage places into state.
type OrderData struct {
	ID                string     `json:"id"`
	OrderNumber       string     `json:"order_number"`
	Email             string     `json:"email"`
	CustomerName      string     `json:"customer_name"`
	Status            string     `json:"status"`
	FulfillmentStatus string     `json:"fulfillment_status"`
	FinancialStatus   string     `json:"financial_status"`
	TotalPrice        float64    `json:"total_price"`
	Currency          string     `json:"currency"`
	LineItems         []LineItem `json:"line_items"`
	TrackingNumbers   []string   `json:"tracking_numbers"`
	TrackingURLs      []string   `json:"tracking_urls"`
	Carrier           string     `json:"carrier"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CustomerData is the normalized customer record from the commerce system.
type CustomerData struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	TotalOrders int      `json:"total_orders"`
	TotalSpent  float64  `json:"total_spent"`
	Tags        []string `json:"tags"`
	IsVIP       bool     `json:"is_vip"`
}

// ActionLog records one store-state-changing action taken during a turn.
// The actions log is append-only across the turn.
type ActionLog struct {
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
}
