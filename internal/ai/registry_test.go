package ai

import (
	"context"
	"testing"
)

type staticProvider struct{ reply string }

func (p *staticProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	return p.reply, nil
}

func TestRegistryRoutesByNameAndModel(t *testing.T) {
	reg := NewRegistry()

	var gotModel string
	reg.Register("Fake", func(ctx context.Context, model string) (Provider, error) {
		gotModel = model
		return &staticProvider{reply: "hi"}, nil
	})

	// Names are case-insensitive.
	p, err := reg.Get(context.Background(), "fake", "some-model")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotModel != "some-model" {
		t.Fatalf("factory got model %q", gotModel)
	}

	reply, err := p.Chat(context.Background(), nil)
	if err != nil || reply != "hi" {
		t.Fatalf("chat: %q, %v", reply, err)
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Get(context.Background(), "nope", "m"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
