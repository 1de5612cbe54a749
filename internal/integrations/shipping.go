package integrations

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	errx "github.com/shopmate-ai/server/internal/core/error"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

// EasyPostClient creates prepaid return labels through an EasyPost-compatible
// shipping API.
type EasyPostClient struct {
	http *resty.Client
}

// NewEasyPostClient builds a shipping client with the given API key.
func NewEasyPostClient(apiKey string, timeout time.Duration) *EasyPostClient {
	rc := resty.New().
		SetBaseURL("https://api.easypost.com/v2").
		SetBasicAuth(apiKey, "").
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &EasyPostClient{http: rc}
}

// CreateReturnLabel buys a return shipment label for the order's items.
func (c *EasyPostClient) CreateReturnLabel(ctx context.Context, req ReturnLabelRequest) (*ReturnLabel, error) {
	body := map[string]any{
		"shipment": map[string]any{
			"is_return": true,
			"reference": req.OrderNumber,
			"from_address": map[string]any{
				"name":    req.FromAddress.Name,
				"street1": req.FromAddress.Address1,
				"city":    req.FromAddress.City,
				"state":   req.FromAddress.Province,
				"zip":     req.FromAddress.Zip,
				"country": req.FromAddress.Country,
			},
		},
	}

	var out struct {
		TrackingCode string `json:"tracking_code"`
		PostageLabel struct {
			LabelURL string `json:"label_url"`
		} `json:"postage_label"`
		SelectedRate struct {
			Carrier string `json:"carrier"`
			Rate    string `json:"rate"`
		} `json:"selected_rate"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/shipments")
	if e := errx.WrapHTTP(err, statusOf(resp), "shipping"); e != nil {
		logx.Error().Err(e).Str("order_number", req.OrderNumber).Msg("return label creation failed")
		return nil, e
	}

	return &ReturnLabel{
		TrackingNumber: out.TrackingCode,
		LabelURL:       out.PostageLabel.LabelURL,
		Carrier:        out.SelectedRate.Carrier,
	}, nil
}

var _ ShippingClient = (*EasyPostClient)(nil)
