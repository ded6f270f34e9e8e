package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/hazriqpedia/waybill/pkg/adapters/memory"
	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/persistence/middleware"
	"github.com/hazriqpedia/waybill/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func encrypted(t *testing.T, next ports.HistoryStore, cfg middleware.EncryptionConfig) ports.HistoryStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		t.Fatalf("NewEncryptionMiddleware failed: %v", err)
	}
	return mw(next)
}

func confirmCall() domain.Turn {
	return domain.NewToolCall(domain.ToolCall{
		ID:   "call_1",
		Name: "confirm_reschedule",
		Args: map[string]any{"tracking_number": "AWB-12345", "postal_code": "56000"},
	})
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunHistoryStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	if err := secure.Append(ctx, "c1", domain.UserMessage("my postal code is 56000"), confirmCall()); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// The underlying store only sees envelopes.
	raw, err := underlying.Load(ctx, "c1", 0)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("Expected 2 stored turns, got %d", len(raw))
	}
	for _, turn := range raw {
		if turn.Text != "" || turn.ToolName != "" {
			t.Fatalf("Expected content to be hidden, found: %+v", turn)
		}
		if _, ok := turn.Args["__encrypted__"]; !ok {
			t.Fatal("Expected __encrypted__ field in args")
		}
	}
	if raw[1].Kind != domain.TurnToolCall {
		t.Errorf("Expected kind to stay readable, got %q", raw[1].Kind)
	}

	loaded, err := secure.Load(ctx, "c1", 0)
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loaded[0].Text != "my postal code is 56000" {
		t.Errorf("Expected user text back, got %q", loaded[0].Text)
	}
	if loaded[1].Args["postal_code"] != "56000" {
		t.Errorf("Expected '56000', got %v", loaded[1].Args["postal_code"])
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	if err := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey}).
		Append(ctx, "c1", domain.UserMessage("hello")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	rotated := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	turns, err := rotated.Load(ctx, "c1", 0)
	if err != nil {
		t.Fatalf("Load with fallback key failed: %v", err)
	}
	if turns[0].Text != "hello" {
		t.Errorf("Expected 'hello', got %q", turns[0].Text)
	}

	wrong := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if _, err := wrong.Load(ctx, "c1", 0); err == nil {
		t.Fatal("Expected decryption to fail with an unknown key")
	}
}

func TestEncryptionMiddleware_RefusesPlainTurns(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	if err := underlying.Append(ctx, "c1", domain.UserMessage("plain")); err != nil {
		t.Fatal(err)
	}

	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if _, err := secure.Load(ctx, "c1", 0); err == nil {
		t.Fatal("Expected an error for a turn without envelope")
	}
}

func TestEncryptionMiddleware_KeySize(t *testing.T) {
	if _, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")}); err == nil {
		t.Fatal("Expected an error for a short key")
	}
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	if err == nil {
		t.Fatal("Expected an error for a short fallback key")
	}
}
