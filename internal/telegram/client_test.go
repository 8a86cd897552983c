package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "TOKEN")
	if err := c.SendMessage(context.Background(), 42, "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/botTOKEN/sendMessage" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody["chat_id"].(float64) != 42 || gotBody["text"] != "hello" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
}

func TestSendTyping(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "TOKEN")
	if err := c.SendTyping(context.Background(), 42); err != nil {
		t.Fatalf("typing: %v", err)
	}
	if gotBody["action"] != "typing" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
}

func TestGetUpdates(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":7,"message":{"message_id":1,"chat":{"id":99},"text":"hi"}},
			{"update_id":8,"message":{"message_id":2,"chat":{"id":99}}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "TOKEN")
	updates, err := c.GetUpdates(context.Background(), 7, 10*time.Second)
	if err != nil {
		t.Fatalf("getUpdates: %v", err)
	}

	if gotBody["offset"].(float64) != 7 || gotBody["timeout"].(float64) != 10 {
		t.Fatalf("unexpected request body: %v", gotBody)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].Message == nil || updates[0].Message.Text != "hi" || updates[0].Message.Chat.ID != 99 {
		t.Fatalf("unexpected first update: %+v", updates[0])
	}
	// A non-text message still parses; the orchestrator decides what to
	// tell the user.
	if updates[1].Message == nil || updates[1].Message.Text != "" {
		t.Fatalf("unexpected second update: %+v", updates[1])
	}
}

func TestAPIErrorSurfacesDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "TOKEN")
	err := c.SendMessage(context.Background(), 42, "hello")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestMemoryOffsetStore(t *testing.T) {
	var s MemoryOffsetStore
	ctx := context.Background()

	off, err := s.GetOffset(ctx)
	if err != nil || off != 0 {
		t.Fatalf("fresh offset: %d, %v", off, err)
	}
	if err := s.SetOffset(ctx, 123); err != nil {
		t.Fatalf("set: %v", err)
	}
	off, err = s.GetOffset(ctx)
	if err != nil || off != 123 {
		t.Fatalf("offset after set: %d, %v", off, err)
	}
}
