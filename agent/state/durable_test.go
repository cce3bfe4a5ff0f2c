package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestUpstashRedisStoreRedisKey(t *testing.T) {
	t.Parallel()

	store := &UpstashRedisStore{}
	got, err := store.redisKey("cust-7")
	if err != nil {
		t.Fatalf("redisKey() error = %v", err)
	}
	if got != "tiendita:conv:cust-7" {
		t.Fatalf("redisKey() = %q, want %q", got, "tiendita:conv:cust-7")
	}

	if _, err := store.redisKey("   "); !errors.Is(err, ErrInvalidCustomer) {
		t.Fatalf("redisKey() error = %v, want ErrInvalidCustomer", err)
	}
}

func TestUpstashRedisStoreSaveSetsKeyAndTTL(t *testing.T) {
	t.Parallel()

	var gotCommand []any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Errorf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":"OK"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
		WithTTL(90*time.Second),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	conv := NewConversation("cust-1", time.Now().UTC())
	if err := store.SaveContext(context.Background(), conv); err != nil {
		t.Fatalf("SaveContext() error = %v", err)
	}

	if len(gotCommand) != 5 {
		t.Fatalf("command = %#v, want SET key payload EX seconds", gotCommand)
	}
	if gotCommand[0] != "SET" || gotCommand[1] != "tiendita:conv:cust-1" {
		t.Fatalf("command prefix = %v %v", gotCommand[0], gotCommand[1])
	}
	if gotCommand[3] != "EX" || gotCommand[4] != float64(90) {
		t.Fatalf("ttl args = %v %v, want EX 90", gotCommand[3], gotCommand[4])
	}
}

func TestUpstashRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()

	var saved string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var cmd []any
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			t.Errorf("decode command: %v", err)
		}
		switch cmd[0] {
		case "SET":
			saved = cmd[2].(string)
			fmt.Fprint(w, `{"result":"OK"}`)
		case "GET":
			payload, _ := json.Marshal(saved)
			fmt.Fprintf(w, `{"result":%s}`, payload)
		default:
			t.Errorf("unexpected command %v", cmd[0])
		}
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conv := NewConversation("cust-1", now)
	conv.AddTurn(RoleUser, "quiero 2 pizzas", now)
	conv.Language = "es"
	conv.Order.AddItem("p1", "pizza muzzarella", 2, 9.5)
	conv.CurrentHandler = HandlerSales

	if err := store.SaveContext(context.Background(), conv); err != nil {
		t.Fatalf("SaveContext() error = %v", err)
	}

	loaded, err := store.LoadContext(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("LoadContext() error = %v", err)
	}
	if loaded.Language != "es" || loaded.CurrentHandler != HandlerSales {
		t.Fatalf("loaded = %+v", loaded)
	}
	if got := loaded.Order.Quantity("p1"); got != 2 {
		t.Fatalf("Quantity() = %d, want 2", got)
	}
	if len(loaded.History) != 1 || loaded.History[0].Text != "quiero 2 pizzas" {
		t.Fatalf("history = %+v", loaded.History)
	}
}

func TestUpstashRedisStoreLoadMissing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":null}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if _, err := store.LoadContext(context.Background(), "cust-1"); !errors.Is(err, ErrContextNotFound) {
		t.Fatalf("LoadContext() error = %v, want ErrContextNotFound", err)
	}
}

func TestUpstashRedisStoreLoadCorruptRecord(t *testing.T) {
	t.Parallel()

	// Status AWAITING_PAYMENT without a payment ref violates the order
	// invariant, so the record must be rejected as corrupt.
	bad := `{"customer_id":"cust-1","order":{"id":"o1","status":"AWAITING_PAYMENT"},"last_activity":"2025-06-01T12:00:00Z"}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := json.Marshal(bad)
		fmt.Fprintf(w, `{"result":%s}`, payload)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if _, err := store.LoadContext(context.Background(), "cust-1"); !errors.Is(err, ErrCorruptContext) {
		t.Fatalf("LoadContext() error = %v, want ErrCorruptContext", err)
	}
}

func TestUpstashRedisStoreRESTError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"WRONGPASS invalid token"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{URL: server.URL, Token: "bad"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if err := store.DeleteContext(context.Background(), "cust-1"); err == nil {
		t.Fatal("DeleteContext() must surface the redis error")
	}
}
