// Package domain contains the wire types of the node's HTTP and websocket API.
// Amounts cross this boundary in satoshi.
package domain

// LiquidityFees is the node's fee estimate for new inbound liquidity.
type LiquidityFees struct {
	MiningFeeSat  int64 `json:"miningFeeSat"`
	ServiceFeeSat int64 `json:"serviceFeeSat"`
}

// CreateInvoiceRequest describes an invoice to create on the node.
type CreateInvoiceRequest struct {
	AmountSat       int64
	ExternalID      string
	ExpirySeconds   int64
	Description     string
	DescriptionHash string
}

// Invoice is the node's response to createinvoice.
type Invoice struct {
	AmountSat   int64  `json:"amountSat"`
	PaymentHash string `json:"paymentHash"`
	Serialized  string `json:"serialized"`
}

// PayResponse is the node's response to a successful payinvoice.
type PayResponse struct {
	RecipientAmountSat int64  `json:"recipientAmountSat"`
	RoutingFeeSat      int64  `json:"routingFeeSat"`
	PaymentID          string `json:"paymentId"`
	PaymentHash        string `json:"paymentHash"`
	PaymentPreimage    string `json:"paymentPreimage"`
}

// IncomingPayment is the node's full record of a received payment.
type IncomingPayment struct {
	PaymentHash string `json:"paymentHash"`
	Preimage    string `json:"preimage"`
	ExternalID  string `json:"externalId"`
	Description string `json:"description"`
	Invoice     string `json:"invoice"`
	IsPaid      bool   `json:"isPaid"`
	ReceivedSat int64  `json:"receivedSat"`
	FeesSat     int64  `json:"fees"`
	CompletedAt int64  `json:"completedAt"` // ms epoch
	CreatedAt   int64  `json:"createdAt"`   // ms epoch
}

// Message is a websocket notification from the node.
type Message struct {
	Type        string `json:"type"`
	AmountSat   int64  `json:"amountSat"`
	PaymentHash string `json:"paymentHash"`
	ExternalID  string `json:"externalId"`
}

// MessageTypePaymentReceived marks settled inbound payments on the event
// subscription.
const MessageTypePaymentReceived = "payment_received"
