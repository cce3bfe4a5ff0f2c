package contract

import (
	"context"

	statex "github.com/tiendita-labs/tiendita/agent/state"
)

// Handler is one conversational capability of the closed set
// {general, sales, product}. Handle reads and may mutate the conversation,
// appends its assistant turn, and returns the reply text.
type Handler interface {
	Kind() statex.HandlerKind
	Handle(ctx context.Context, message string, conv *statex.Conversation) (string, error)
}

// Router classifies an inbound message against a conversation snapshot and
// selects the target handler. It never mutates state.
type Router interface {
	Classify(ctx context.Context, message string, conv *statex.Conversation) statex.HandlerKind
}

// Inferencer is the opaque language-model collaborator. History is passed
// explicitly; no hidden session state is assumed on the other side.
type Inferencer interface {
	Infer(ctx context.Context, prompt string, history []statex.Turn) (string, error)
}

// Catalog is the external product catalog collaborator.
type Catalog interface {
	LookupProduct(ctx context.Context, id string) (*Product, error)
	FindProduct(ctx context.Context, name string) (*Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
}

// Payments creates a hosted payment link for an order.
type Payments interface {
	CreatePaymentLink(ctx context.Context, order *statex.Order) (string, error)
}
