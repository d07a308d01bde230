package node

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/nwcd/internal/config"
	nodedomain "github.com/smallbiznis/nwcd/internal/node/domain"
)

// Client issues request/response calls against the node's HTTP API. The node
// authenticates with HTTP Basic auth using an empty username.
type Client struct {
	baseURL  string
	password string
	client   *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.Node.BaseURL, "/"),
		password: cfg.Node.Password,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// EstimateLiquidityFees asks the node what new inbound liquidity for the given
// amount would cost right now.
func (c *Client) EstimateLiquidityFees(ctx context.Context, amountSat int64) (*nodedomain.LiquidityFees, error) {
	values := url.Values{}
	values.Set("amountSat", strconv.FormatInt(amountSat, 10))

	var fees nodedomain.LiquidityFees
	if err := c.doRequest(ctx, http.MethodGet, "/estimateliquidityfees", values, &fees); err != nil {
		return nil, err
	}
	return &fees, nil
}

// CreateInvoice creates a BOLT11 invoice on the node.
func (c *Client) CreateInvoice(ctx context.Context, req nodedomain.CreateInvoiceRequest) (*nodedomain.Invoice, error) {
	values := url.Values{}
	values.Set("amountSat", strconv.FormatInt(req.AmountSat, 10))
	values.Set("externalId", req.ExternalID)
	values.Set("expirySeconds", strconv.FormatInt(req.ExpirySeconds, 10))
	if req.DescriptionHash != "" {
		values.Set("descriptionHash", req.DescriptionHash)
	} else {
		values.Set("description", req.Description)
	}

	var invoice nodedomain.Invoice
	if err := c.doRequest(ctx, http.MethodPost, "/createinvoice", values, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// PayInvoice asks the node to pay a BOLT11 invoice. amountSat overrides the
// invoice amount when non-zero. A node-side rejection surfaces as
// ErrPaymentFailed; transport failures surface as plain errors.
func (c *Client) PayInvoice(ctx context.Context, invoice string, amountSat int64) (*nodedomain.PayResponse, error) {
	values := url.Values{}
	values.Set("invoice", invoice)
	if amountSat > 0 {
		values.Set("amountSat", strconv.FormatInt(amountSat, 10))
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/payinvoice", values)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pay invoice: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pay invoice: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", nodedomain.ErrPaymentFailed, strings.TrimSpace(string(body)))
	}

	var payResp nodedomain.PayResponse
	if err := json.Unmarshal(body, &payResp); err != nil {
		return nil, fmt.Errorf("pay invoice: decode response: %w", err)
	}
	if payResp.PaymentPreimage == "" {
		return nil, fmt.Errorf("%w: %s", nodedomain.ErrPaymentFailed, strings.TrimSpace(string(body)))
	}
	return &payResp, nil
}

// GetIncomingPayment fetches the full record of one received payment.
func (c *Client) GetIncomingPayment(ctx context.Context, paymentHash string) (*nodedomain.IncomingPayment, error) {
	var payment nodedomain.IncomingPayment
	if err := c.doRequest(ctx, http.MethodGet, "/payments/incoming/"+url.PathEscape(paymentHash), nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListIncomingPayments fetches all received payments completed after fromMs,
// in the node's newest-first order.
func (c *Client) ListIncomingPayments(ctx context.Context, fromMs int64) ([]nodedomain.IncomingPayment, error) {
	values := url.Values{}
	values.Set("from", strconv.FormatInt(fromMs, 10))

	var payments []nodedomain.IncomingPayment
	if err := c.doRequest(ctx, http.MethodGet, "/payments/incoming", values, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, values url.Values) (*http.Request, error) {
	endpoint := c.baseURL + path
	var body io.Reader
	if method == http.MethodGet {
		if len(values) > 0 {
			endpoint += "?" + values.Encode()
		}
	} else {
		body = strings.NewReader(values.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth("", c.password)
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, values url.Values, out any) error {
	req, err := c.newRequest(ctx, method, path, values)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: node returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
