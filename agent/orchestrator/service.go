package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/tiendita-labs/tiendita/agent/contract"
	handlerx "github.com/tiendita-labs/tiendita/agent/handlers"
	nodex "github.com/tiendita-labs/tiendita/agent/nodes"
	statex "github.com/tiendita-labs/tiendita/agent/state"
)

var (
	ErrInvalidMessage  = nodex.ErrInvalidMessage
	ErrInvalidCustomer = nodex.ErrInvalidCustomer

	ErrOrderNotFound = errors.New("order not found")
)

const defaultSweepInterval = 5 * time.Minute

type Config struct {
	SweepInterval time.Duration
}

// Orchestrator binds the context store, intent router, and handler set into
// the per-turn pipeline. Turns for different customers run concurrently;
// turns for the same customer are serialized by the store's per-key lock,
// which Respond holds across the whole pipeline.
type Orchestrator struct {
	store    *statex.ContextStore
	durable  statex.DurableStore
	router   contractx.Router
	handlers *handlerx.Set

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	sweepInterval time.Duration
	now           func() time.Time
}

func New(
	store *statex.ContextStore,
	router contractx.Router,
	handlers *handlerx.Set,
	durable statex.DurableStore,
	cfg Config,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("context store is required")
	}
	if router == nil {
		return nil, errors.New("intent router is required")
	}
	if handlers == nil {
		return nil, errors.New("handler set is required")
	}
	if durable == nil {
		durable = noopDurableStore{}
	}

	sweepInterval := cfg.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}

	o := &Orchestrator{
		store:         store,
		durable:       durable,
		router:        router,
		handlers:      handlers,
		sweepInterval: sweepInterval,
		now:           time.Now,
	}

	graphRunner, err := o.compileRespondGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Respond processes one inbound customer message and returns the reply text.
// Downstream collaborator failures never escape: they surface as a fallback
// reply while the conversation is still touched and persisted.
func (o *Orchestrator) Respond(ctx context.Context, customerID string, text string) (string, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return "", ErrInvalidCustomer
	}

	conv, created, release := o.store.Acquire(customerID)
	defer release()

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		Conversation: conv,
		Text:         text,
		Created:      created,
	})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

// ConfirmPayment marks the order identified by the payment notification's
// external reference as paid. The order must belong to a live conversation
// whose status is AWAITING_PAYMENT; anything else is the caller's to handle
// (a stale or unknown reference, or a notification racing an in-flight turn).
func (o *Orchestrator) ConfirmPayment(ctx context.Context, orderID string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return ErrOrderNotFound
	}

	customerID, ok := o.store.FindByOrder(orderID)
	if !ok {
		return ErrOrderNotFound
	}

	conv, created, release := o.store.Acquire(customerID)
	defer release()
	if created || conv.Order == nil || conv.Order.ID != orderID {
		return ErrOrderNotFound
	}

	if err := conv.Order.MarkPaid(); err != nil {
		return err
	}
	o.store.Touch(conv)
	if err := o.durable.SaveContext(ctx, conv); err != nil {
		log.Warn().Err(err).Str("customer_id", customerID).Msg("durable save failed")
	}
	log.Info().Str("customer_id", customerID).Str("order_id", orderID).Msg("order paid")
	return nil
}

// EndSession evicts the customer's conversation explicitly.
func (o *Orchestrator) EndSession(customerID string) {
	o.store.Remove(strings.TrimSpace(customerID))
}

// RunEvictionSweeper periodically evicts expired conversations until the
// context is cancelled. Acquire also sweeps lazily, so the periodic sweep
// only bounds how long idle state outlives quiet periods.
func (o *Orchestrator) RunEvictionSweeper(ctx context.Context) {
	ticker := time.NewTicker(o.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := o.store.EvictExpired(o.now()); evicted > 0 {
				log.Debug().Int("evicted", evicted).Msg("context sweep")
			}
		}
	}
}

type noopDurableStore struct{}

func (noopDurableStore) LoadContext(context.Context, string) (*statex.Conversation, error) {
	return nil, statex.ErrContextNotFound
}

func (noopDurableStore) SaveContext(context.Context, *statex.Conversation) error {
	return nil
}

func (noopDurableStore) DeleteContext(context.Context, string) error {
	return nil
}
