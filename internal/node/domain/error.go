package domain

import "errors"

var (
	// ErrPaymentFailed marks a payment the node attempted and explicitly
	// rejected, as opposed to a transport failure.
	ErrPaymentFailed = errors.New("node failed to pay invoice")

	// ErrMalformedMessage marks an unparseable subscription message; the
	// connection is torn down and redialed rather than partially recovered.
	ErrMalformedMessage = errors.New("malformed node message")
)
