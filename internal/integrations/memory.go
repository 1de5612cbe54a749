package integrations

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopmate-ai/server/internal/agent/model"
)

// InMemoryCommerce is a commerce client backed by seeded records. It serves
// local demo runs and tests where no real store is configured.
type InMemoryCommerce struct {
	mu        sync.RWMutex
	orders    map[string]*Order
	customers map[string]*Customer
}

// NewInMemoryCommerce returns a store pre-seeded with one shipped demo order.
func NewInMemoryCommerce() *InMemoryCommerce {
	c := &InMemoryCommerce{
		orders:    make(map[string]*Order),
		customers: make(map[string]*Customer),
	}
	c.AddOrder(&Order{
		ID:                1001,
		OrderNumber:       1234,
		Email:             "demo@example.com",
		FulfillmentStatus: "fulfilled",
		FinancialStatus:   "paid",
		TotalPrice:        "150.00",
		Currency:          "USD",
		CreatedAt:         time.Now().AddDate(0, 0, -6),
		LineItems: []OrderLineItem{
			{Title: "Waxed Canvas Jacket", Quantity: 1, Price: "150.00"},
		},
		ShippingAddress: Address{Name: "Demo Customer", City: "Portland", Country: "US"},
		Fulfillments: []Fulfillment{
			{ShipmentStatus: "in_transit", TrackingNumber: "1Z999AA10123456784", TrackingCompany: "UPS"},
		},
	})
	c.AddCustomer(&Customer{
		ID:          501,
		Email:       "demo@example.com",
		FirstName:   "Demo",
		LastName:    "Customer",
		OrdersCount: 4,
		TotalSpent:  "612.50",
	})
	return c
}

// AddOrder registers an order, keyed by its order number.
func (c *InMemoryCommerce) AddOrder(order *Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders[strconv.FormatInt(order.OrderNumber, 10)] = order
}

// AddCustomer registers a customer, keyed by lowercased email.
func (c *InMemoryCommerce) AddCustomer(customer *Customer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customers[strings.ToLower(customer.Email)] = customer
}

func (c *InMemoryCommerce) GetOrderByNumber(_ context.Context, orderNumber string) (*Order, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.orders[orderNumber], nil
}

func (c *InMemoryCommerce) GetCustomerByEmail(_ context.Context, email string) (*Customer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.customers[strings.ToLower(email)], nil
}

// ProcessRefund records nothing and always succeeds.
func (c *InMemoryCommerce) ProcessRefund(_ context.Context, _ *model.OrderData, amount float64, _ string) (*RefundResult, error) {
	return &RefundResult{RefundID: uuid.NewString(), Amount: amount, Status: "processed"}, nil
}

// StaticCommerceProvider serves the same commerce client for every store id.
type StaticCommerceProvider struct {
	Client CommerceClient
}

func (p StaticCommerceProvider) Commerce(_ context.Context, _ string) (CommerceClient, error) {
	return p.Client, nil
}

var (
	_ CommerceClient  = (*InMemoryCommerce)(nil)
	_ RefundProcessor = (*InMemoryCommerce)(nil)
)
