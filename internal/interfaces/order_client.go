package interfaces

import (
	"context"

	"github.com/Piyush-always/amble-ind/internal/razorpay"
)

// OrderClient defines the contract for creating orders with the payment
// processor. Handlers depend on this interface so tests can substitute a
// fake processor.
type OrderClient interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
}
