package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	syncdomain "farmsurvey/internal/domain/sync"

	"github.com/coder/websocket"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type gaugeRecorder struct {
	mu   sync.Mutex
	last int
}

func (g *gaugeRecorder) SetLiveClients(n int) {
	g.mu.Lock()
	g.last = n
	g.mu.Unlock()
}

func (g *gaugeRecorder) value() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

func TestHub_BroadcastsToClients(t *testing.T) {
	gauge := &gaugeRecorder{}
	hub := NewHub([]string{"*"}, gauge, slog.Default())
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, gauge.value())

	ev := syncdomain.Event{Type: syncdomain.EventTypeSync, DeviceID: "dev-a", Inserted: 2, Success: true}
	require.NoError(t, hub.Publish(ctx, ev))

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var got syncdomain.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "dev-a", got.DeviceID)
	assert.Equal(t, 2, got.Inserted)
}

func TestHub_ClientDisconnect(t *testing.T) {
	gauge := &gaugeRecorder{}
	hub := NewHub([]string{"*"}, gauge, slog.Default())
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, gauge.value())
}

func TestHub_PublishAfterClose(t *testing.T) {
	hub := NewHub(nil, nil, slog.Default())
	hub.Close()

	err := hub.Publish(context.Background(), syncdomain.Event{Type: syncdomain.EventTypeSync})
	assert.ErrorIs(t, err, ErrHubClosed)
}

// fakeToken завершенный токен paho
type fakeToken struct {
	err      error
	finished bool
}

func (t *fakeToken) Wait() bool                     { return t.finished }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.finished }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

// fakeClient реализует только используемые методы mqtt.Client
type fakeClient struct {
	mqtt.Client
	open      bool
	token     *fakeToken
	published []string
	topics    []string
}

func (c *fakeClient) IsConnectionOpen() bool { return c.open }

func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	c.topics = append(c.topics, topic)
	c.published = append(c.published, string(payload.([]byte)))
	return c.token
}

func TestMQTTPublisher_Publish(t *testing.T) {
	client := &fakeClient{open: true, token: &fakeToken{finished: true}}
	p := newMQTTPublisher(client, "farmsurvey/sync", slog.Default())

	err := p.Publish(context.Background(), syncdomain.Event{Type: syncdomain.EventTypeSync, DeviceID: "dev-a"})
	require.NoError(t, err)

	require.Len(t, client.topics, 1)
	assert.Equal(t, "farmsurvey/sync/dev-a", client.topics[0])
	assert.Contains(t, client.published[0], `"type":"sync.completed"`)
}

func TestMQTTPublisher_Errors(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeClient
		wantErr error
	}{
		{
			name:    "not connected",
			client:  &fakeClient{open: false},
			wantErr: ErrNotConnected,
		},
		{
			name:    "timeout",
			client:  &fakeClient{open: true, token: &fakeToken{finished: false}},
			wantErr: ErrPublishTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newMQTTPublisher(tt.client, "farmsurvey/sync", slog.Default())
			err := p.Publish(context.Background(), syncdomain.Event{DeviceID: "dev-a"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	broker := errors.New("broker rejected")
	p := newMQTTPublisher(&fakeClient{open: true, token: &fakeToken{finished: true, err: broker}}, "t", slog.Default())
	assert.ErrorIs(t, p.Publish(context.Background(), syncdomain.Event{}), broker)
}

type publisherFunc func(context.Context, syncdomain.Event) error

func (f publisherFunc) Publish(ctx context.Context, e syncdomain.Event) error { return f(ctx, e) }

func TestFanout(t *testing.T) {
	var delivered []string
	ok := publisherFunc(func(_ context.Context, e syncdomain.Event) error {
		delivered = append(delivered, e.DeviceID)
		return nil
	})
	boom := errors.New("boom")
	failing := publisherFunc(func(context.Context, syncdomain.Event) error { return boom })

	f := Fanout{failing, nil, ok}
	err := f.Publish(context.Background(), syncdomain.Event{DeviceID: "dev-a"})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"dev-a"}, delivered)
	assert.NoError(t, Fanout{}.Publish(context.Background(), syncdomain.Event{}))
}
