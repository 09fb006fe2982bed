package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logx "jiradigest/pkg/logx"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestManagerReloadPublishesValidChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jiradigest.json")
	writeConfig(t, path, `{"report":{"title":"one"}}`)

	m := NewManager(path, MapLookup(baseEnv()))
	m.SetLogger(logx.Nop())
	m.SetValidator(func(c *Config) error { return c.Validate() })
	m.debounce = 10 * time.Millisecond

	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "one", cfg.Report.Title)

	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = m.Watch(ctx)
		close(done)
	}()
	// let the watcher attach
	time.Sleep(100 * time.Millisecond)

	writeConfig(t, path, `{"report":{"title":"two"}}`)
	select {
	case got := <-ch:
		assert.Equal(t, "two", got.Report.Title)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload published")
	}
	assert.Equal(t, "two", m.Get().Report.Title)

	// an invalid edit is rejected and the live config stays
	writeConfig(t, path, `{"report":{"style":"table"}}`)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, "two", m.Get().Report.Title)
	select {
	case got := <-ch:
		t.Fatalf("unexpected publish: %+v", got.Report)
	default:
	}

	cancel()
	<-done
}

func TestManagerReloadSkipsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.json")
	writeConfig(t, path, `{}`)
	m := NewManager(path, MapLookup(baseEnv()))
	_, err := m.Load()
	require.NoError(t, err)

	assert.False(t, m.reload())
	writeConfig(t, path, `{"report":{"title":"new"}}`)
	assert.True(t, m.reload())
}

func TestPublishKeepsNewest(t *testing.T) {
	m := NewManager("", nil)
	ch := m.Subscribe(1)
	a, b := &Config{}, &Config{}
	m.publish(a)
	m.publish(b)
	assert.Same(t, b, <-ch)
	m.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
}
