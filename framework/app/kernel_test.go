package app_test

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-resolver/framework/app"
	"github.com/km-arc/go-resolver/framework/config"
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/modules"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type store struct {
	addr   string
	mu     sync.Mutex
	closed bool
}

func (s *store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type storeProvider struct {
	modules.BaseProvider
	booted bool
}

func (p *storeProvider) Register(reg *modules.Registry) {
	reg.Register("store.memory", func(addr string) *store { return &store{addr: addr} })
}

func (p *storeProvider) Boot(*modules.Registry) { p.booted = true }

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "test", Env: "testing"},
		Services: config.ServicesConfig{File: "testdata/services.yaml"},
		HTTP:     config.HTTPConfig{Addr: "127.0.0.1:0"},
		Log:      config.LogConfig{Level: "debug", Format: "text"},
		Tracing:  config.TracingConfig{Exporter: "none"},
	}
}

func newApp(t *testing.T, cfg *config.Config, opts app.Options) *app.Application {
	t.Helper()
	if opts.LogOutput == nil {
		opts.LogOutput = io.Discard
	}
	a, err := app.NewWithOptions(cfg, opts)
	require.NoError(t, err)
	return a
}

// ── New ───────────────────────────────────────────────────────────────────────

func TestNew_LoadsDefinitionsAndProviders(t *testing.T) {
	p := &storeProvider{}
	a := newApp(t, testConfig(), app.Options{Providers: []modules.ServiceProvider{p}})
	ctx := context.Background()

	assert.True(t, p.booted, "providers are booted by New")
	assert.Empty(t, a.Lint(ctx))

	addr, err := a.Get(ctx, "addr")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", addr)

	v, err := a.Get(ctx, "store")
	require.NoError(t, err)
	s := v.(*store)
	assert.Equal(t, "127.0.0.1:0", s.addr)

	require.NoError(t, a.Shutdown(ctx))
	assert.True(t, s.closed, "closer services are closed on shutdown")
}

func TestNew_WithDefinitions(t *testing.T) {
	a := newApp(t, testConfig(), app.Options{Definitions: &container.Config{
		Services: map[string]*container.Definition{
			"name": {Module: "framework.config.App.Name", Init: "value"},
		},
	}})
	defer a.Shutdown(context.Background())

	v, err := a.Get(context.Background(), "name")
	require.NoError(t, err)
	assert.Equal(t, "test", v)
	assert.False(t, a.Container.Has("store"))
}

func TestNew_MissingDefinitionsFile(t *testing.T) {
	cfg := testConfig()
	cfg.Services.File = "testdata/nope.yaml"
	_, err := app.NewWithOptions(cfg, app.Options{LogOutput: io.Discard})
	assert.Error(t, err)
}

func TestNew_InvalidLogLevel(t *testing.T) {
	cfg := testConfig()
	cfg.Log.Level = "chatty"
	_, err := app.NewWithOptions(cfg, app.Options{LogOutput: io.Discard})
	assert.Error(t, err)
}

func TestNew_InvalidTracingExporter(t *testing.T) {
	cfg := testConfig()
	cfg.Tracing = config.TracingConfig{Enabled: true, Exporter: "fax"}
	_, err := app.NewWithOptions(cfg, app.Options{LogOutput: io.Discard})
	assert.ErrorContains(t, err, "tracing")
}

func TestNew_LogsContainerActivity(t *testing.T) {
	var buf bytes.Buffer
	a := newApp(t, testConfig(), app.Options{
		LogOutput: &buf,
		Providers: []modules.ServiceProvider{&storeProvider{}},
	})
	defer a.Shutdown(context.Background())

	_, err := a.Get(context.Background(), "addr")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "category=container")
	assert.Contains(t, buf.String(), "service=addr")
}

func TestNew_FileTracing(t *testing.T) {
	cfg := testConfig()
	traceFile := filepath.Join(t.TempDir(), "traces", "spans.jsonl")
	cfg.Tracing = config.TracingConfig{Enabled: true, Exporter: "file", FilePath: traceFile, SampleRate: 1}
	a := newApp(t, cfg, app.Options{Providers: []modules.ServiceProvider{&storeProvider{}}})

	_, err := a.Get(context.Background(), "addr")
	require.NoError(t, err)
	require.NoError(t, a.Shutdown(context.Background()))

	data, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "container.get")
}

// ── Serve ─────────────────────────────────────────────────────────────────────

func TestServeListener(t *testing.T) {
	a := newApp(t, testConfig(), app.Options{Providers: []modules.ServiceProvider{&storeProvider{}}})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.ServeListener(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/lint"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ServeListener did not return after cancel")
	}
	require.NoError(t, a.Shutdown(context.Background()))
}

// ── Environment ───────────────────────────────────────────────────────────────

func TestEnvironment(t *testing.T) {
	a := newApp(t, testConfig(), app.Options{Definitions: &container.Config{}})
	defer a.Shutdown(context.Background())

	assert.Equal(t, "testing", a.Environment())
	assert.True(t, a.IsTesting())
	assert.False(t, a.IsLocal())
	assert.False(t, a.IsProduction())
	assert.False(t, a.IsDebug())
	assert.NotEmpty(t, a.Version())
}
