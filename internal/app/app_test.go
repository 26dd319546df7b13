package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/trigtutor/internal/cache"
	"github.com/abhisek/trigtutor/internal/config"
	"github.com/abhisek/trigtutor/internal/llm"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	return &config.Config{
		LLM:   llm.Config{Provider: "mock"},
		Cache: config.CacheConfig{Backend: backend, TTL: time.Hour},
		DB:    config.DBConfig{Path: filepath.Join(t.TempDir(), "nested", "app.db")},
	}
}

func TestNew_MockProvider(t *testing.T) {
	a, err := New(t.Context(), testConfig(t, config.CacheSQLite), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	if a.Provider.ModelID() != "mock" {
		t.Fatalf("expected mock provider, got %q", a.Provider.ModelID())
	}
	if a.Server().Handler() == nil {
		t.Fatal("expected handler")
	}
}

func TestNew_RejectsUnconfiguredProvider(t *testing.T) {
	cfg := testConfig(t, config.CacheMemory)
	cfg.LLM = llm.Config{Provider: "gemini"}

	if _, err := New(t.Context(), cfg, nil); err == nil {
		t.Fatal("expected error without an API key")
	}
}

func TestOpenBase_SQLiteCachePersists(t *testing.T) {
	cfg := testConfig(t, config.CacheSQLite)

	b, err := OpenBase(t.Context(), cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key := cache.Key("validarTema", "Radianes")
	b.Cache.Set(t.Context(), key, map[string]bool{"is_relevant": true})
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err = OpenBase(t.Context(), cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()

	var got map[string]bool
	if !b.Cache.Get(t.Context(), key, &got) || !got["is_relevant"] {
		t.Fatal("expected cached entry to survive reopen")
	}
}

func TestWire_ChatUsesCache(t *testing.T) {
	b, err := OpenBase(t.Context(), testConfig(t, config.CacheMemory), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer b.Close()

	mock := llm.NewMockProvider(llm.Text(`{"is_relevant":false,"suggested_topics":["a","b","c"]}`))
	a := Wire(b, mock)

	for range 2 {
		reply, err := a.Chat.Submit(t.Context(), "u1", "Historia")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reply.Suggestions) != 3 {
			t.Fatalf("expected 3 suggestions, got %v", reply.Suggestions)
		}
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected the verdict cached, got %d calls", mock.CallCount())
	}

	reqs, err := b.Store.RequestLog().Recent(t.Context(), "u1", 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected both requests logged, got %d", len(reqs))
	}
}
