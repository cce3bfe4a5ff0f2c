package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/enetx/fsm"
	"github.com/google/uuid"
)

// Status is the order lifecycle state. Transitions are monotonic except
// CANCELLED, which is reachable from any non-terminal status.
type Status string

const (
	StatusOpen            Status = "OPEN"
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusPaid            Status = "PAID"
	StatusCancelled       Status = "CANCELLED"
)

const (
	eventCheckout = fsm.Event("checkout")
	eventPay      = fsm.Event("pay")
	eventCancel   = fsm.Event("cancel")
)

// statusMachine encodes the legal status transitions. It is cloned per check
// so the shared prototype carries no mutable state.
var statusMachine = fsm.New(fsm.State(StatusOpen)).
	Transition(fsm.State(StatusOpen), eventCheckout, fsm.State(StatusAwaitingPayment)).
	Transition(fsm.State(StatusAwaitingPayment), eventPay, fsm.State(StatusPaid)).
	Transition(fsm.State(StatusOpen), eventCancel, fsm.State(StatusCancelled)).
	Transition(fsm.State(StatusAwaitingPayment), eventCancel, fsm.State(StatusCancelled))

var (
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrPaymentRefMissing = errors.New("payment reference is required")
)

// Line is one order line. Items are keyed by product id; a line stores the
// display name and unit price captured at add time so a payment link can be
// built without another catalog round trip.
type Line struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	UnitPrice float64 `json:"unit_price"`
}

// Order is the mutable cart owned by exactly one Conversation. There is no
// back-pointer to the conversation; the order is reached only via its parent.
type Order struct {
	ID         string           `json:"id" validate:"required"`
	Items      map[string]*Line `json:"items,omitempty" validate:"dive"`
	Status     Status           `json:"status" validate:"required,oneof=OPEN AWAITING_PAYMENT PAID CANCELLED"`
	PaymentRef string           `json:"payment_ref,omitempty"`
}

func NewOrder() *Order {
	return &Order{
		ID:     uuid.NewString(),
		Items:  make(map[string]*Line, 4),
		Status: StatusOpen,
	}
}

// AddItem adjusts the quantity for a product by delta. A line that reaches
// zero or below is removed, never stored at zero.
func (o *Order) AddItem(productID, name string, delta int, unitPrice float64) int {
	if o.Items == nil {
		o.Items = make(map[string]*Line, 4)
	}
	line, ok := o.Items[productID]
	if !ok {
		if delta <= 0 {
			return 0
		}
		o.Items[productID] = &Line{Name: name, Quantity: delta, UnitPrice: unitPrice}
		return delta
	}
	line.Quantity += delta
	if unitPrice > 0 {
		line.UnitPrice = unitPrice
	}
	if line.Quantity <= 0 {
		delete(o.Items, productID)
		return 0
	}
	return line.Quantity
}

// RemoveItem drops the whole line for a product.
func (o *Order) RemoveItem(productID string) {
	delete(o.Items, productID)
}

func (o *Order) Quantity(productID string) int {
	if line, ok := o.Items[productID]; ok {
		return line.Quantity
	}
	return 0
}

func (o *Order) Empty() bool {
	return len(o.Items) == 0
}

func (o *Order) Total() float64 {
	var total float64
	for _, line := range o.Items {
		total += float64(line.Quantity) * line.UnitPrice
	}
	return total
}

func (o *Order) Terminal() bool {
	return o.Status == StatusPaid || o.Status == StatusCancelled
}

func (o *Order) transition(event fsm.Event, to Status) error {
	m := statusMachine.Clone()
	m.SetState(fsm.State(o.Status))
	if err := m.Trigger(event); err != nil {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = Status(m.Current())
	return nil
}

// BeginCheckout moves OPEN -> AWAITING_PAYMENT, recording the payment
// reference obtained from the payment collaborator. The reference is set on
// this transition and never before.
func (o *Order) BeginCheckout(paymentRef string) error {
	if o.Empty() {
		return ErrEmptyOrder
	}
	if strings.TrimSpace(paymentRef) == "" {
		return ErrPaymentRefMissing
	}
	if err := o.transition(eventCheckout, StatusAwaitingPayment); err != nil {
		return err
	}
	o.PaymentRef = paymentRef
	return nil
}

// MarkPaid moves AWAITING_PAYMENT -> PAID.
func (o *Order) MarkPaid() error {
	return o.transition(eventPay, StatusPaid)
}

// Cancel moves any non-terminal status to CANCELLED.
func (o *Order) Cancel() error {
	if err := o.transition(eventCancel, StatusCancelled); err != nil {
		return err
	}
	o.PaymentRef = ""
	return nil
}

// Validate enforces the order invariants: quantities above zero and the
// payment reference set if and only if the status is AWAITING_PAYMENT or PAID.
func (o *Order) Validate() error {
	if o == nil {
		return errors.New("order is nil")
	}
	if err := validate.Struct(o); err != nil {
		return err
	}
	hasRef := strings.TrimSpace(o.PaymentRef) != ""
	needsRef := o.Status == StatusAwaitingPayment || o.Status == StatusPaid
	if hasRef != needsRef {
		return fmt.Errorf("payment reference mismatch for status %s", o.Status)
	}
	return nil
}
