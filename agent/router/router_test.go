package router

import (
	"context"
	"errors"
	"testing"
	"time"

	statex "github.com/tiendita-labs/tiendita/agent/state"
)

type fakeInferencer struct {
	label string
	err   error
	calls int
}

func (f *fakeInferencer) Infer(_ context.Context, _ string, _ []statex.Turn) (string, error) {
	f.calls++
	return f.label, f.err
}

func TestClassifyHeuristics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    statex.HandlerKind
	}{
		{"spanish purchase", "Quiero 2 pizzas muzzarella", statex.HandlerSales},
		{"english purchase", "I want to buy three empanadas", statex.HandlerSales},
		{"checkout phrase", "eso es todo, gracias", statex.HandlerSales},
		{"spanish price", "¿Cuánto cuesta la pizza napolitana?", statex.HandlerProduct},
		{"english availability", "do you have fainá in stock?", statex.HandlerProduct},
		{"catalog request", "mandame el menú", statex.HandlerProduct},
		{"bare quantity follow-up", "2 más", statex.HandlerSales},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			llm := &fakeInferencer{label: "GENERAL"}
			r := New(llm, "classify")
			conv := statex.NewConversation("cust-1", time.Now())

			if got := r.Classify(context.Background(), tt.message, conv); got != tt.want {
				t.Fatalf("Classify(%q) = %s, want %s", tt.message, got, tt.want)
			}
			if llm.calls != 0 {
				t.Fatal("a confident heuristic must not call inference")
			}
		})
	}
}

func TestClassifyAmbiguousUsesInference(t *testing.T) {
	t.Parallel()

	llm := &fakeInferencer{label: " product \n"}
	r := New(llm, "classify")
	conv := statex.NewConversation("cust-1", time.Now())

	if got := r.Classify(context.Background(), "hola, como andan?", conv); got != statex.HandlerProduct {
		t.Fatalf("Classify() = %s, want product", got)
	}
	if llm.calls != 1 {
		t.Fatalf("inference calls = %d, want 1", llm.calls)
	}
}

func TestClassifyInferenceFailureFallsBackToCurrentHandler(t *testing.T) {
	t.Parallel()

	llm := &fakeInferencer{err: errors.New("upstream 503")}
	r := New(llm, "classify")
	conv := statex.NewConversation("cust-1", time.Now())
	conv.CurrentHandler = statex.HandlerSales

	if got := r.Classify(context.Background(), "mmm ok", conv); got != statex.HandlerSales {
		t.Fatalf("Classify() = %s, want the sticky handler", got)
	}
}

func TestClassifyUnrecognizedLabelFallsBackToGeneral(t *testing.T) {
	t.Parallel()

	llm := &fakeInferencer{label: "BANANA"}
	r := New(llm, "classify")
	conv := statex.NewConversation("cust-1", time.Now())

	if got := r.Classify(context.Background(), "hola", conv); got != statex.HandlerGeneral {
		t.Fatalf("Classify() = %s, want general", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		message string
		want    string
	}{
		{"Hola, quiero una pizza", LangSpanish},
		{"¿Cuánto cuesta el menú?", LangSpanish},
		{"Hello, I want to buy a pizza", LangEnglish},
		{"how much is it?", LangEnglish},
		{"xyzzy 123", ""},
	}

	for _, tt := range tests {
		if got := DetectLanguage(tt.message); got != tt.want {
			t.Fatalf("DetectLanguage(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}
