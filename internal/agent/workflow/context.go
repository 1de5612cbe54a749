package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopmate-ai/server/internal/agent/model"
	"github.com/shopmate-ai/server/internal/integrations"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

// fetchContext pulls order, customer and knowledge-base context for the turn.
// The three lookups are independently fault tolerant: a dead commerce API
// still leaves the knowledge base usable and vice versa.
func (e *Engine) fetchContext(ctx context.Context, st *model.ConversationState) *model.StateUpdate {
	u := &model.StateUpdate{}

	var commerce integrations.CommerceClient
	if e.deps.Commerce != nil {
		var err error
		commerce, err = e.deps.Commerce.Commerce(ctx, st.StoreID)
		if err != nil {
			logx.Error().Err(err).Str("store_id", st.StoreID).Msg("commerce client unavailable")
		}
	}

	if commerce != nil && st.OrderID != "" {
		order, err := commerce.GetOrderByNumber(ctx, st.OrderID)
		switch {
		case err != nil:
			logx.Error().Err(err).Str("order_id", st.OrderID).Msg("order lookup failed")
			u.Error = model.Ptr("Failed to fetch order: " + err.Error())
		case order == nil:
			u.AgentReasoning = model.Ptr(fmt.Sprintf("Order #%s not found in system", st.OrderID))
		default:
			u.OrderData = normalizeOrder(order)
		}
	}

	if commerce != nil && st.Email != "" {
		customer, err := commerce.GetCustomerByEmail(ctx, st.Email)
		if err != nil {
			logx.Error().Err(err).Str("email", st.Email).Msg("customer lookup failed")
		} else if customer != nil {
			u.CustomerData = normalizeCustomer(customer)
		}
	}

	if e.deps.Knowledge != nil {
		results, err := e.deps.Knowledge.Search(ctx, st.StoreID, st.CurrentMessage,
			e.deps.Policy.KBRetrievalTopK, e.deps.Policy.KBSimilarityThreshold)
		if err != nil {
			logx.Error().Err(err).Str("store_id", st.StoreID).Msg("knowledge search failed")
		} else if len(results) > 0 {
			excerpts := make([]string, 0, len(results))
			for _, r := range results {
				excerpts = append(excerpts, formatKBExcerpt(r))
			}
			u.PolicyContext = excerpts
		}
	}

	return u
}

// DeriveOrderStatus collapses the commerce system's cancellation, fulfillment
// and financial flags into one customer-facing status. First match wins.
func DeriveOrderStatus(order *integrations.Order) string {
	switch {
	case order.CancelledAt != nil:
		return model.OrderStatusCancelled
	case order.FulfillmentStatus == "fulfilled":
		if delivered(order.Fulfillments) {
			return model.OrderStatusDelivered
		}
		return model.OrderStatusShipped
	case order.FulfillmentStatus == "partial":
		return model.OrderStatusPartiallyShipped
	case order.FinancialStatus == "paid":
		return model.OrderStatusProcessing
	case order.FinancialStatus == "pending":
		return model.OrderStatusPendingPayment
	default:
		return model.OrderStatusUnknown
	}
}

func delivered(fulfillments []integrations.Fulfillment) bool {
	for _, f := range fulfillments {
		if f.ShipmentStatus == "delivered" {
			return true
		}
	}
	return false
}

// normalizeOrder flattens the raw commerce order into the workflow's view of
// it, collecting tracking data from every fulfillment.
func normalizeOrder(order *integrations.Order) *model.OrderData {
	data := &model.OrderData{
		ID:                strconv.FormatInt(order.ID, 10),
		OrderNumber:       strconv.FormatInt(order.OrderNumber, 10),
		Email:             order.Email,
		CustomerName:      order.ShippingAddress.Name,
		Status:            DeriveOrderStatus(order),
		FulfillmentStatus: order.FulfillmentStatus,
		FinancialStatus:   order.FinancialStatus,
		TotalPrice:        parsePrice(order.TotalPrice),
		Currency:          order.Currency,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}

	for _, item := range order.LineItems {
		data.LineItems = append(data.LineItems, model.LineItem{
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	for _, f := range order.Fulfillments {
		if f.TrackingNumber != "" {
			data.TrackingNumbers = append(data.TrackingNumbers, f.TrackingNumber)
		}
		if f.TrackingURL != "" {
			data.TrackingURLs = append(data.TrackingURLs, f.TrackingURL)
		}
		if data.Carrier == "" && f.TrackingCompany != "" {
			data.Carrier = f.TrackingCompany
		}
	}
	return data
}

func normalizeCustomer(customer *integrations.Customer) *model.CustomerData {
	data := &model.CustomerData{
		ID:          strconv.FormatInt(customer.ID, 10),
		Email:       customer.Email,
		Name:        strings.TrimSpace(customer.FirstName + " " + customer.LastName),
		TotalOrders: customer.OrdersCount,
		TotalSpent:  parsePrice(customer.TotalSpent),
	}
	if customer.Tags != "" {
		for _, tag := range strings.Split(customer.Tags, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			data.Tags = append(data.Tags, tag)
			if strings.EqualFold(tag, "vip") {
				data.IsVIP = true
			}
		}
	}
	return data
}

func parsePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func formatKBExcerpt(r integrations.KBResult) string {
	if r.PageTitle == "" && r.SourceURL == "" {
		return r.Content
	}
	return fmt.Sprintf("[%s](%s)\n%s", r.PageTitle, r.SourceURL, r.Content)
}
