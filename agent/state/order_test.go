package state

import (
	"errors"
	"testing"
)

func TestOrderAddItemAccumulates(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	if got := order.AddItem("p1", "pizza muzzarella", 2, 9.5); got != 2 {
		t.Fatalf("AddItem() = %d, want 2", got)
	}
	if got := order.AddItem("p1", "pizza muzzarella", 2, 9.5); got != 4 {
		t.Fatalf("AddItem() = %d, want 4", got)
	}
	if got := order.Total(); got != 38 {
		t.Fatalf("Total() = %v, want 38", got)
	}
}

func TestOrderAddItemNeverStoresZeroQuantity(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	order.AddItem("p1", "empanada", 3, 1.5)
	if got := order.AddItem("p1", "empanada", -3, 0); got != 0 {
		t.Fatalf("AddItem() = %d, want 0", got)
	}
	if _, ok := order.Items["p1"]; ok {
		t.Fatal("line should be removed when quantity reaches zero")
	}
	if !order.Empty() {
		t.Fatal("Empty() = false, want true")
	}
}

func TestOrderAddItemNegativeDeltaOnMissingLine(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	if got := order.AddItem("p9", "faina", -2, 0); got != 0 {
		t.Fatalf("AddItem() = %d, want 0", got)
	}
	if !order.Empty() {
		t.Fatal("removing an absent line must not create one")
	}
}

func TestOrderCheckoutFlow(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	order.AddItem("p1", "pizza napolitana", 1, 12)

	if err := order.BeginCheckout("https://pay.example/x1"); err != nil {
		t.Fatalf("BeginCheckout() error = %v", err)
	}
	if order.Status != StatusAwaitingPayment {
		t.Fatalf("Status = %s, want %s", order.Status, StatusAwaitingPayment)
	}
	if order.PaymentRef != "https://pay.example/x1" {
		t.Fatalf("PaymentRef = %q", order.PaymentRef)
	}

	if err := order.MarkPaid(); err != nil {
		t.Fatalf("MarkPaid() error = %v", err)
	}
	if !order.Terminal() {
		t.Fatal("Terminal() = false after MarkPaid")
	}
}

func TestOrderCheckoutRequiresItemsAndRef(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	if err := order.BeginCheckout("https://pay.example/x1"); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("BeginCheckout() error = %v, want ErrEmptyOrder", err)
	}

	order.AddItem("p1", "pizza", 1, 10)
	if err := order.BeginCheckout("  "); !errors.Is(err, ErrPaymentRefMissing) {
		t.Fatalf("BeginCheckout() error = %v, want ErrPaymentRefMissing", err)
	}
	if order.Status != StatusOpen {
		t.Fatalf("failed checkout must not change status, got %s", order.Status)
	}
}

func TestOrderTransitionsAreMonotonic(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	order.AddItem("p1", "pizza", 1, 10)
	if err := order.MarkPaid(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("MarkPaid() from OPEN error = %v, want ErrInvalidTransition", err)
	}

	if err := order.BeginCheckout("ref"); err != nil {
		t.Fatalf("BeginCheckout() error = %v", err)
	}
	if err := order.BeginCheckout("ref2"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second BeginCheckout() error = %v, want ErrInvalidTransition", err)
	}

	if err := order.MarkPaid(); err != nil {
		t.Fatalf("MarkPaid() error = %v", err)
	}
	if err := order.Cancel(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Cancel() from PAID error = %v, want ErrInvalidTransition", err)
	}
}

func TestOrderCancelClearsPaymentRef(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	order.AddItem("p1", "pizza", 2, 10)
	if err := order.BeginCheckout("ref"); err != nil {
		t.Fatalf("BeginCheckout() error = %v", err)
	}
	if err := order.Cancel(); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if order.Status != StatusCancelled {
		t.Fatalf("Status = %s, want CANCELLED", order.Status)
	}
	if order.PaymentRef != "" {
		t.Fatalf("PaymentRef = %q, want empty after cancel", order.PaymentRef)
	}
}

func TestOrderValidatePaymentRefInvariant(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	order.AddItem("p1", "pizza", 1, 10)
	if err := order.Validate(); err != nil {
		t.Fatalf("Validate() open order error = %v", err)
	}

	order.PaymentRef = "dangling"
	if err := order.Validate(); err == nil {
		t.Fatal("Validate() must reject a payment ref on an OPEN order")
	}

	order.PaymentRef = ""
	order.Status = StatusAwaitingPayment
	if err := order.Validate(); err == nil {
		t.Fatal("Validate() must reject AWAITING_PAYMENT without a ref")
	}
}
