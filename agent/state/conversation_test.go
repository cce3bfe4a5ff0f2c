package state

import (
	"testing"
	"time"
)

func TestConversationRecentTurnsWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conv := NewConversation("cust-1", now)
	for i := 0; i < 15; i++ {
		conv.AddTurn(RoleUser, "hola", now)
	}

	got := conv.RecentTurns(10)
	if len(got) != 10 {
		t.Fatalf("RecentTurns(10) returned %d turns", len(got))
	}
	if len(conv.RecentTurns(0)) != 15 {
		t.Fatal("RecentTurns(0) must return the full history")
	}
}

func TestConversationExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conv := NewConversation("cust-1", now)

	if conv.Expired(now.Add(30*time.Minute), 30*time.Minute) {
		t.Fatal("conversation at exactly the TTL boundary is not expired")
	}
	if !conv.Expired(now.Add(30*time.Minute+time.Second), 30*time.Minute) {
		t.Fatal("conversation past the TTL must be expired")
	}

	conv.Touch(now.Add(20 * time.Minute))
	if conv.Expired(now.Add(40*time.Minute), 30*time.Minute) {
		t.Fatal("Touch must reset the idle window")
	}
}

func TestConversationLanguageContinuity(t *testing.T) {
	t.Parallel()

	conv := NewConversation("cust-1", time.Now())

	conv.ObserveLanguage("es")
	if conv.Language != "es" {
		t.Fatalf("Language = %q, want es", conv.Language)
	}

	// One contradicting message does not switch.
	conv.ObserveLanguage("en")
	if conv.Language != "es" {
		t.Fatalf("Language = %q, want es after one english message", conv.Language)
	}

	// Back to spanish clears the pending switch.
	conv.ObserveLanguage("es")
	conv.ObserveLanguage("en")
	if conv.Language != "es" {
		t.Fatalf("Language = %q, want es", conv.Language)
	}

	// Two consecutive contradicting messages switch.
	conv.ObserveLanguage("en")
	if conv.Language != "en" {
		t.Fatalf("Language = %q, want en after two consecutive english messages", conv.Language)
	}

	// Unknown detection never changes anything.
	conv.ObserveLanguage("")
	if conv.Language != "en" || conv.PendingLanguage != "" {
		t.Fatalf("unknown detection mutated state: %q/%q", conv.Language, conv.PendingLanguage)
	}
}

func TestConversationEnsureOrderAfterTerminal(t *testing.T) {
	t.Parallel()

	conv := NewConversation("cust-1", time.Now())
	first := conv.EnsureOrder()
	if first != conv.Order {
		t.Fatal("EnsureOrder must return the attached order")
	}

	first.AddItem("p1", "pizza", 1, 10)
	if err := first.BeginCheckout("ref"); err != nil {
		t.Fatalf("BeginCheckout() error = %v", err)
	}
	if err := first.MarkPaid(); err != nil {
		t.Fatalf("MarkPaid() error = %v", err)
	}

	second := conv.EnsureOrder()
	if second == first {
		t.Fatal("EnsureOrder must attach a fresh order after a terminal status")
	}
	if second.Status != StatusOpen || !second.Empty() {
		t.Fatalf("fresh order = %s with %d items", second.Status, len(second.Items))
	}
}

func TestConversationValidateRejectsBadHistoryRole(t *testing.T) {
	t.Parallel()

	conv := NewConversation("cust-1", time.Now())
	if err := conv.Validate(); err != nil {
		t.Fatalf("Validate() fresh conversation error = %v", err)
	}

	conv.History = append(conv.History, Turn{Role: "robot", Text: "hi"})
	if err := conv.Validate(); err == nil {
		t.Fatal("Validate() must reject an unknown turn role")
	}
}
