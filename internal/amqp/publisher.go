package amqp

import (
	"context"

	"bollette/internal/core"
)

// PaymentPublisher adapts the AMQP client to the payment events port.
type PaymentPublisher struct {
	client *Client
}

func NewPaymentPublisher(client *Client) *PaymentPublisher {
	return &PaymentPublisher{client: client}
}

func (p *PaymentPublisher) PublishPaymentRecorded(ctx context.Context, rec core.LedgerRecord) error {
	return p.client.PublishPaymentEvent(ctx, NewPaymentEventMessage(EventPaymentRecorded, rec.ID, rec.OwnerID))
}

func (p *PaymentPublisher) PublishPaymentCancelled(ctx context.Context, recordID, ownerID int64) error {
	return p.client.PublishPaymentEvent(ctx, NewPaymentEventMessage(EventPaymentCancelled, recordID, ownerID))
}
