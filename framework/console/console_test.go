package console_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-resolver/framework/console"
	"github.com/km-arc/go-resolver/framework/modules"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type demoProvider struct{ modules.BaseProvider }

func (p *demoProvider) Register(reg *modules.Registry) {
	reg.Register("demo.echo", func(s string) string { return s })
	reg.Register("demo.point", func() point { return point{X: 1, Y: 2} })
}

const validDefs = `services:
  greeting:
    module: demo.echo
    args: ["env:CONSOLE_TEST_GREETING:hello"]
    extras: ["tag:text"]
  origin:
    module: demo.point
`

const brokenDefs = `services:
  greeting:
    module: demo.missing
`

// syncBuffer is safe to read while a command writes to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeDefs(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	out := &syncBuffer{}
	root := console.NewRootCommand(console.Options{
		Providers: []modules.ServiceProvider{&demoProvider{}},
		Out:       out,
		Err:       &syncBuffer{},
	})
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

// ── lint ──────────────────────────────────────────────────────────────────────

func TestLint_Clean(t *testing.T) {
	path := writeDefs(t, t.TempDir(), validDefs)

	out, err := run(t, context.Background(), "lint", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No problems found.")
}

func TestLint_ProblemsExitOne(t *testing.T) {
	path := writeDefs(t, t.TempDir(), brokenDefs)

	out, err := run(t, context.Background(), "lint", "--config", path)

	var exit *console.ExitError
	require.True(t, errors.As(err, &exit), "got %v", err)
	assert.Equal(t, 1, exit.Code)
	assert.Contains(t, out, "Missing module demo.missing for greeting")
	assert.Contains(t, out, "1 problem(s) found.")
}

func TestLint_MissingFile(t *testing.T) {
	_, err := run(t, context.Background(), "lint", "-c", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var exit *console.ExitError
	assert.False(t, errors.As(err, &exit))
}

func TestLint_Watch(t *testing.T) {
	dir := t.TempDir()
	path := writeDefs(t, dir, brokenDefs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	root := console.NewRootCommand(console.Options{
		Providers: []modules.ServiceProvider{&demoProvider{}},
		Out:       out,
		Err:       &syncBuffer{},
	})
	root.SetArgs([]string{"lint", "--watch", "-c", path})

	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Watching")
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, out.String(), "Missing module demo.missing")

	require.NoError(t, os.WriteFile(path, []byte(validDefs), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "No problems found.")
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("lint --watch did not stop after cancel")
	}
}

// ── get ───────────────────────────────────────────────────────────────────────

func TestGet_String(t *testing.T) {
	path := writeDefs(t, t.TempDir(), validDefs)

	out, err := run(t, context.Background(), "get", "greeting", "-c", path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestGet_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDefs(t, dir, validDefs)
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("CONSOLE_TEST_GREETING=bonjour\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("CONSOLE_TEST_GREETING") })

	out, err := run(t, context.Background(), "get", "greeting", "-c", path, "--env", envFile)
	require.NoError(t, err)
	assert.Equal(t, "bonjour\n", out)
}

func TestGet_JSON(t *testing.T) {
	path := writeDefs(t, t.TempDir(), validDefs)

	out, err := run(t, context.Background(), "get", "origin", "-c", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1,"y":2}`, out)
}

func TestGet_Undefined(t *testing.T) {
	path := writeDefs(t, t.TempDir(), validDefs)

	_, err := run(t, context.Background(), "get", "nope", "-c", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestGet_RequiresID(t *testing.T) {
	path := writeDefs(t, t.TempDir(), validDefs)

	_, err := run(t, context.Background(), "get", "-c", path)
	assert.Error(t, err)
}

// ── services ──────────────────────────────────────────────────────────────────

func TestServices(t *testing.T) {
	path := writeDefs(t, t.TempDir(), validDefs)

	out, err := run(t, context.Background(), "services", "-c", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"ID", "MODULE", "INIT", "STATE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"greeting", "demo.echo", "-", "idle"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"origin", "demo.point", "-", "idle"}, strings.Fields(lines[2]))
}

func TestServices_Tag(t *testing.T) {
	path := writeDefs(t, t.TempDir(), validDefs)

	out, err := run(t, context.Background(), "services", "--tag", "text", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "greeting")
	assert.NotContains(t, out, "origin")
}

// ── serve ─────────────────────────────────────────────────────────────────────

func TestServe_StopsOnCancel(t *testing.T) {
	path := writeDefs(t, t.TempDir(), validDefs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := run(t, ctx, "serve", "--addr", "127.0.0.1:0", "-c", path)
		done <- err
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestServe_BadAddr(t *testing.T) {
	path := writeDefs(t, t.TempDir(), validDefs)

	_, err := run(t, context.Background(), "serve", "--addr", "256.0.0.1:bad", "-c", path)
	assert.Error(t, err)
}
