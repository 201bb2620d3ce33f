// Package notify carries the product service's image-status push
// channel. Each product has a logical room; subscribers join it, read
// status events, and leave on teardown.
package notify

import (
	"context"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
)

// StatusEvent is what the product service emits whenever a product's
// image processing status changes.
type StatusEvent struct {
	ProductID string                   `json:"productId"`
	Status    catalog.ProcessingStatus `json:"status"`
}

type Feed interface {
	// Subscribe joins the room for one product. The subscription stays
	// open until Close or until ctx is cancelled.
	Subscribe(ctx context.Context, productID string) (Subscription, error)
}

type Subscription interface {
	// Events delivers status events for the subscribed product. The
	// channel closes when the subscription ends.
	Events() <-chan StatusEvent
	// Close leaves the room. Idempotent.
	Close() error
}
