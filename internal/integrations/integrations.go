// Package integrations holds the collaborator contracts the workflow consumes
// (commerce, shipping, refunds, knowledge retrieval, escalation) and their
// HTTP implementations. The workflow depends only on the interfaces; every
// call site treats these as fallible and independently optional.
package integrations

import (
	"context"
	"time"

	"github.com/shopmate-ai/server/internal/agent/model"
)

// Fulfillment is one shipment on a commerce order.
type Fulfillment struct {
	ShipmentStatus  string `json:"shipment_status"`
	TrackingNumber  string `json:"tracking_number"`
	TrackingURL     string `json:"tracking_url"`
	TrackingCompany string `json:"tracking_company"`
}

// OrderLineItem is a purchased item as the commerce API reports it.
type OrderLineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// Address is a shipping address as the commerce API reports it.
type Address struct {
	Name     string `json:"name"`
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// Order is the raw order record from the commerce system. The context stage
// normalizes it into model.OrderData and derives the customer-facing status.
type Order struct {
	ID                int64           `json:"id"`
	OrderNumber       int64           `json:"order_number"`
	Email             string          `json:"email"`
	CancelledAt       *time.Time      `json:"cancelled_at"`
	FulfillmentStatus string          `json:"fulfillment_status"`
	FinancialStatus   string          `json:"financial_status"`
	TotalPrice        string          `json:"total_price"`
	Currency          string          `json:"currency"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	LineItems         []OrderLineItem `json:"line_items"`
	ShippingAddress   Address         `json:"shipping_address"`
	Fulfillments      []Fulfillment   `json:"fulfillments"`
}

// Customer is the raw customer record from the commerce system.
type Customer struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	OrdersCount int    `json:"orders_count"`
	TotalSpent  string `json:"total_spent"`
	Tags        string `json:"tags"`
}

// CommerceClient looks up orders and customers in the store's commerce
// system. Both lookups return (nil, nil) when the record is absent; absence
// is a valid outcome, not an error.
type CommerceClient interface {
	GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error)
	GetCustomerByEmail(ctx context.Context, email string) (*Customer, error)
}

// RefundResult is the outcome of a processed refund.
type RefundResult struct {
	RefundID string  `json:"refund_id"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"`
}

// RefundProcessor executes a refund against the payment provider.
type RefundProcessor interface {
	ProcessRefund(ctx context.Context, order *model.OrderData, amount float64, reason string) (*RefundResult, error)
}

// ReturnLabelRequest carries what the shipping collaborator needs to create a
// prepaid return label.
type ReturnLabelRequest struct {
	OrderNumber string
	Email       string
	FromAddress Address
	Items       []string
}

// ReturnLabel is a created return shipping label.
type ReturnLabel struct {
	TrackingNumber string  `json:"tracking_number"`
	LabelURL       string  `json:"label_url"`
	Carrier        string  `json:"carrier"`
	Cost           float64 `json:"cost"`
}

// ShippingClient creates return labels.
type ShippingClient interface {
	CreateReturnLabel(ctx context.Context, req ReturnLabelRequest) (*ReturnLabel, error)
}

// KBResult is one knowledge-base excerpt with source attribution.
type KBResult struct {
	Content   string  `json:"content"`
	SourceURL string  `json:"source_url"`
	PageTitle string  `json:"page_title"`
	Score     float64 `json:"score"`
}

// KnowledgeRetriever searches the store's knowledge base. An empty result is
// valid.
type KnowledgeRetriever interface {
	Search(ctx context.Context, storeID, query string, topK int, threshold float64) ([]KBResult, error)
}

// EscalationSink receives escalations destined for a human agent. Notify is
// fire-and-forget: the workflow consumes no return value and logs failures
// itself.
type EscalationSink interface {
	Notify(ctx context.Context, conversationID, reason, priority, agentContext string)
}
