package state

import (
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
)

// HandlerKind identifies which specialized handler served a turn.
type HandlerKind string

const (
	HandlerGeneral HandlerKind = "general"
	HandlerSales   HandlerKind = "sales"
	HandlerProduct HandlerKind = "product"
)

// Valid reports whether k is one of the closed handler set.
func (k HandlerKind) Valid() bool {
	switch k {
	case HandlerGeneral, HandlerSales, HandlerProduct:
		return true
	}
	return false
}

// Turn is one entry of the conversation history.
type Turn struct {
	Role      string    `json:"role" validate:"required,oneof=user assistant system"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation is the per-customer conversational and order state.
// At most one Conversation exists per customer id at any time; it is created
// lazily on first contact and evicted once now-LastActivity exceeds the TTL.
type Conversation struct {
	CustomerID string `json:"customer_id" validate:"required"`
	History    []Turn `json:"history,omitempty" validate:"dive"`

	// Language is the tag replies are written in ("es", "en"). It is fixed by
	// the first message; PendingLanguage tracks a contradicting language so a
	// switch only happens after two consecutive contradicting messages.
	Language        string `json:"language,omitempty"`
	PendingLanguage string `json:"pending_language,omitempty"`

	Order          *Order      `json:"order" validate:"required"`
	CurrentHandler HandlerKind `json:"current_handler,omitempty"`

	LastActivity time.Time `json:"last_activity"`
}

func NewConversation(customerID string, now time.Time) *Conversation {
	return &Conversation{
		CustomerID:   customerID,
		Order:        NewOrder(),
		LastActivity: now.UTC(),
	}
}

func (c *Conversation) Touch(now time.Time) {
	c.LastActivity = now.UTC()
}

func (c *Conversation) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.LastActivity) > ttl
}

// AddTurn appends to the history. History is append-only within a session.
func (c *Conversation) AddTurn(role, text string, now time.Time) {
	c.History = append(c.History, Turn{
		Role:      role,
		Text:      strings.TrimSpace(text),
		Timestamp: now.UTC(),
	})
}

// RecentTurns returns up to n of the most recent turns.
func (c *Conversation) RecentTurns(n int) []Turn {
	if n <= 0 || len(c.History) <= n {
		return c.History
	}
	return c.History[len(c.History)-n:]
}

// ObserveLanguage feeds the detected language of the current message into the
// continuity heuristic. An empty detection (unknown) never changes anything.
// The first detection fixes the language; afterwards a switch requires the
// same contradicting language on two consecutive messages.
func (c *Conversation) ObserveLanguage(detected string) {
	detected = strings.TrimSpace(detected)
	if detected == "" {
		return
	}
	if c.Language == "" {
		c.Language = detected
		return
	}
	if detected == c.Language {
		c.PendingLanguage = ""
		return
	}
	if detected == c.PendingLanguage {
		c.Language = detected
		c.PendingLanguage = ""
		return
	}
	c.PendingLanguage = detected
}

// EnsureOrder makes sure the conversation owns an order, attaching a fresh
// open one after the previous reached a terminal status and was flushed.
func (c *Conversation) EnsureOrder() *Order {
	if c.Order == nil || c.Order.Terminal() {
		c.Order = NewOrder()
	}
	return c.Order
}

var validate = validatorv10.New()

// Validate checks structural invariants. It is applied to every record
// rehydrated from durable storage; a failing record is discarded.
func (c *Conversation) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	return c.Order.Validate()
}
