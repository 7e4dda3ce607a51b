package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/voicaj/internal/record"
)

func startTestNATSServer(t *testing.T) *natsserver.Server {
	t.Helper()
	opts := &natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	}
	server, err := natsserver.NewServer(opts)
	require.NoError(t, err)

	go server.Start()
	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}
	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})
	return server
}

func TestNATSPublisher(t *testing.T) {
	server := startTestNATSServer(t)
	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	sub, err := nc.SubscribeSync("test.classified")
	require.NoError(t, err)

	p := NewNATSPublisher(nc, "test", nil)
	assert.Equal(t, "test.classified", p.Subject(KindClassified))
	assert.Equal(t, "test.learned", p.Subject(KindLearned))

	err = p.Publish(context.Background(), Event{
		Kind:      KindClassified,
		SessionID: "s1",
		Text:      "buy milk",
		Records:   []record.Record{{Type: record.TypeTask, Title: "Buy milk"}},
		Path:      "deterministic",
	})
	require.NoError(t, err)

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, KindClassified, got.Kind)
	assert.Equal(t, "s1", got.SessionID)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "Buy milk", got.Records[0].Title)

	assert.NoError(t, p.Close())
	assert.True(t, nc.IsConnected())
}

func TestNATSPublisher_Check(t *testing.T) {
	server := startTestNATSServer(t)
	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)

	p := NewNATSPublisher(nc, "", nil)
	require.NoError(t, p.Check(context.Background()))

	nc.Close()
	assert.ErrorContains(t, p.Check(context.Background()), "CLOSED")
}

func TestNewConnectsWhenEnabled(t *testing.T) {
	server := startTestNATSServer(t)

	p, err := New(Config{Enabled: true, NATSURL: server.ClientURL()}, nil)
	require.NoError(t, err)
	np, ok := p.(*NATSPublisher)
	require.True(t, ok)
	assert.Equal(t, DefaultSubjectPrefix+".learned", np.Subject(KindLearned))
	require.NoError(t, p.Publish(context.Background(), Event{Kind: KindLearned, Feedback: "wrong date"}))
	assert.NoError(t, p.Close())
}

func TestNewDisabled(t *testing.T) {
	p, err := New(Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, p)
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}

func TestNewUnreachable(t *testing.T) {
	_, err := New(Config{Enabled: true, NATSURL: "nats://127.0.0.1:1"}, nil)
	assert.Error(t, err)
}

func TestPublishCancelledContext(t *testing.T) {
	server := startTestNATSServer(t)
	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewNATSPublisher(nc, "", nil).Publish(ctx, Event{Kind: KindClassified}), context.Canceled)
}
