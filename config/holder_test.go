package config_test

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/artpar/paygate/config"
	"github.com/rs/zerolog"
)

func validConfig() string {
	return `
logging:
  level: "info"

rate_limit:
  default_limit: 100
`
}

func TestHolder_Get(t *testing.T) {
	h, err := config.NewHolder(writeConfig(t, validConfig()), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	got := h.Get()
	if got == nil {
		t.Fatal("Get returned nil")
	}
	if got.RateLimit.DefaultLimit != 100 {
		t.Errorf("RateLimit.DefaultLimit = %d, want 100", got.RateLimit.DefaultLimit)
	}
}

func TestHolder_ReloadAndOnChange(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	var mu sync.Mutex
	var received *config.Config
	h.OnChange(func(cfg *config.Config) {
		mu.Lock()
		received = cfg
		mu.Unlock()
	})

	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0644); err != nil {
		t.Fatalf("write new config: %v", err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}

	if h.Get().Logging.Level != "debug" {
		t.Errorf("reloaded Logging.Level = %s, want debug", h.Get().Logging.Level)
	}

	mu.Lock()
	defer mu.Unlock()
	if received == nil || received.Logging.Level != "debug" {
		t.Errorf("OnChange received %+v, want debug level", received)
	}
}

func TestHolder_ReloadInvalidConfig(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	var errs int
	h.OnError(func(error) { errs++ })

	if err := os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644); err != nil {
		t.Fatalf("write invalid config: %v", err)
	}

	if err := h.Reload(); err == nil {
		t.Error("Reload should fail for invalid config")
	}
	if errs != 1 {
		t.Errorf("OnError called %d times, want 1", errs)
	}
	if h.Get().Logging.Level != "info" {
		t.Errorf("should keep old config, got Logging.Level = %s", h.Get().Logging.Level)
	}
}

func TestHolder_WatchFile(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	changed := make(chan struct{}, 4)
	h.OnChange(func(*config.Config) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	if err := h.WatchFile(); err != nil {
		t.Fatalf("WatchFile error: %v", err)
	}

	if err := os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644); err != nil {
		t.Fatalf("write new config: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("file watcher did not trigger reload")
	}

	if h.Get().Logging.Level != "warn" {
		t.Errorf("after file watch, Logging.Level = %s, want warn", h.Get().Logging.Level)
	}
}

func TestHolder_StopTwice(t *testing.T) {
	h, err := config.NewHolder(writeConfig(t, validConfig()), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	h.Stop()
	h.Stop()
}

func TestHolder_ConcurrentAccess(t *testing.T) {
	h, err := config.NewHolder(writeConfig(t, validConfig()), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if h.Get() == nil {
					t.Error("concurrent Get returned nil")
				}
			}
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Reload()
		}()
	}
	wg.Wait()
}

func TestRestartRequired(t *testing.T) {
	old := writeAndLoad(t, validConfig())

	same := writeAndLoad(t, validConfig())
	same.Logging.Level = "debug"
	if got := config.RestartRequired(old, same); len(got) != 0 {
		t.Errorf("RestartRequired = %v, want none for log level change", got)
	}

	changed := writeAndLoad(t, "server:\n  port: 9000\nrate_limit:\n  default_limit: 5\n")
	got := config.RestartRequired(old, changed)
	want := map[string]bool{"server.port": true, "rate_limit": true}
	if len(got) != len(want) {
		t.Fatalf("RestartRequired = %v, want %v", got, want)
	}
	for _, f := range got {
		if !want[f] {
			t.Errorf("unexpected field %s", f)
		}
	}
}

func TestReloadableFields(t *testing.T) {
	fields := config.ReloadableFields()
	if len(fields) != 1 || fields[0] != "logging.level" {
		t.Errorf("ReloadableFields = %v, want [logging.level]", fields)
	}

	for _, f := range config.NonReloadableFields() {
		if f == "logging.level" {
			t.Error("logging.level listed as non-reloadable")
		}
	}
}
