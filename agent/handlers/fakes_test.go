package handlers

import (
	"context"
	"strings"

	contractx "github.com/tiendita-labs/tiendita/agent/contract"
	statex "github.com/tiendita-labs/tiendita/agent/state"
)

type fakeCatalog struct {
	products []contractx.Product
	err      error
}

func (f *fakeCatalog) LookupProduct(_ context.Context, id string) (*contractx.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, contractx.ErrProductNotFound
}

func (f *fakeCatalog) FindProduct(_ context.Context, name string) (*contractx.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	tokens := strings.Fields(strings.ToLower(name))
	for i := range f.products {
		lower := strings.ToLower(f.products[i].Name)
		matched := len(tokens) > 0
		for _, tok := range tokens {
			if !strings.Contains(lower, tok) {
				matched = false
				break
			}
		}
		if matched {
			return &f.products[i], nil
		}
	}
	return nil, contractx.ErrProductNotFound
}

func (f *fakeCatalog) ListProducts(_ context.Context, filter contractx.ProductFilter) ([]contractx.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if filter.Limit > 0 && len(f.products) > filter.Limit {
		return f.products[:filter.Limit], nil
	}
	return f.products, nil
}

type fakeInferencer struct {
	reply string
	err   error
	calls int
}

func (f *fakeInferencer) Infer(_ context.Context, _ string, _ []statex.Turn) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakePayments struct {
	link  string
	err   error
	calls int
}

func (f *fakePayments) CreatePaymentLink(_ context.Context, _ *statex.Order) (string, error) {
	f.calls++
	return f.link, f.err
}

func pizzaCatalog() *fakeCatalog {
	return &fakeCatalog{products: []contractx.Product{
		{ID: "p1", Name: "Pizza Muzzarella", Price: 9.5, AvailableQuantity: 10},
		{ID: "p2", Name: "Pizza Napolitana", Price: 12, AvailableQuantity: 3},
		{ID: "p3", Name: "Empanada de Carne", Price: 1.5, AvailableQuantity: 50},
	}}
}
