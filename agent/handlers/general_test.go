package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/tiendita-labs/tiendita/agent/contract"
	statex "github.com/tiendita-labs/tiendita/agent/state"
)

func TestGeneralHandlerFirstContactGreetsWithCatalog(t *testing.T) {
	t.Parallel()

	llm := &fakeInferencer{reply: "should not be used"}
	h := NewGeneral(llm, pizzaCatalog(), "persona")
	conv := newConv("es")
	conv.AddTurn(statex.RoleUser, "hola", time.Now())

	reply, err := h.Handle(context.Background(), "hola", conv)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if llm.calls != 0 {
		t.Fatal("first contact must not call inference")
	}
	if !strings.Contains(reply, "¡Hola!") || !strings.Contains(reply, "Pizza Muzzarella") {
		t.Fatalf("reply = %q", reply)
	}
	if conv.CurrentHandler != statex.HandlerGeneral {
		t.Fatalf("CurrentHandler = %s", conv.CurrentHandler)
	}
}

func TestGeneralHandlerDelegatesToInference(t *testing.T) {
	t.Parallel()

	llm := &fakeInferencer{reply: "Abrimos todos los días de 12 a 23."}
	h := NewGeneral(llm, pizzaCatalog(), "persona")
	conv := newConv("es")
	conv.AddTurn(statex.RoleUser, "hola", time.Now())
	conv.AddTurn(statex.RoleAssistant, "¡Hola!", time.Now())
	conv.AddTurn(statex.RoleUser, "¿a qué hora abren?", time.Now())

	reply, err := h.Handle(context.Background(), "¿a qué hora abren?", conv)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if reply != "Abrimos todos los días de 12 a 23." {
		t.Fatalf("reply = %q", reply)
	}
	if llm.calls != 1 {
		t.Fatalf("inference calls = %d, want 1", llm.calls)
	}

	last := conv.History[len(conv.History)-1]
	if last.Role != statex.RoleAssistant || last.Text != reply {
		t.Fatalf("assistant turn not recorded: %+v", last)
	}
}

func TestGeneralHandlerInferenceFailure(t *testing.T) {
	t.Parallel()

	llm := &fakeInferencer{err: errors.New("upstream 502")}
	h := NewGeneral(llm, &fakeCatalog{}, "persona")
	conv := newConv("es")
	conv.AddTurn(statex.RoleUser, "hola", time.Now())
	conv.AddTurn(statex.RoleAssistant, "hola!", time.Now())
	conv.AddTurn(statex.RoleUser, "pregunta rara", time.Now())

	_, err := h.Handle(context.Background(), "pregunta rara", conv)
	if !errors.Is(err, contractx.ErrDownstream) {
		t.Fatalf("Handle() error = %v, want ErrDownstream", err)
	}
}

func TestGeneralHandlerNeverMutatesOrder(t *testing.T) {
	t.Parallel()

	llm := &fakeInferencer{reply: "ok"}
	h := NewGeneral(llm, pizzaCatalog(), "persona")
	conv := newConv("es")
	conv.Order.AddItem("p1", "Pizza Muzzarella", 2, 9.5)
	conv.AddTurn(statex.RoleUser, "hola", time.Now())
	conv.AddTurn(statex.RoleAssistant, "hola!", time.Now())

	if _, err := h.Handle(context.Background(), "gracias", conv); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got := conv.Order.Quantity("p1"); got != 2 {
		t.Fatalf("Quantity(p1) = %d, want 2", got)
	}
}
