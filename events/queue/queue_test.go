package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sih-ehealth/event-backbone/config"
	"github.com/sih-ehealth/event-backbone/events"
)

func startBroker(t *testing.T) *server.Server {
	t.Helper()
	srv, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	})
	require.NoError(t, err)

	go srv.Start()
	require.True(t, srv.ReadyForConnections(5*time.Second), "embedded broker did not start")
	t.Cleanup(srv.Shutdown)
	return srv
}

func connect(t *testing.T, srv *server.Server, cfg config.QueueConfig) *Client {
	t.Helper()
	cfg.URL = srv.ClientURL()
	client, err := Connect(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestConnectEnsuresStream(t *testing.T) {
	srv := startBroker(t)
	client := connect(t, srv, config.QueueConfig{})

	info, err := client.js.StreamInfo(StreamName)
	require.NoError(t, err)
	assert.Contains(t, info.Config.Subjects, "patient.admitted")
	assert.Contains(t, info.Config.Subjects, "events.default")

	// A second connection must tolerate the existing stream.
	connect(t, srv, config.QueueConfig{})
}

func TestPublishAndConsume(t *testing.T) {
	srv := startBroker(t)
	client := connect(t, srv, config.QueueConfig{})

	event := events.NewPatientAdmitted("p1", "Jean", "Martin")
	event.HospitalID = "H1"
	payload, err := events.Encode(event)
	require.NoError(t, err)
	require.NoError(t, client.Send(context.Background(), "patient.admitted", payload))

	received := make(chan events.DomainEvent, 1)
	listener := NewListener(client, zaptest.NewLogger(t), config.QueueConfig{Group: "test", Workers: 3})
	listener.Register(events.PatientAdmitted, func(ctx context.Context, ev events.DomainEvent) error {
		received <- ev
		return nil
	})
	require.NoError(t, listener.Start(context.Background()))
	defer listener.Stop()

	select {
	case got := <-received:
		assert.Equal(t, event.EventID, got.Meta().EventID)
		admitted, ok := got.(*events.PatientAdmittedEvent)
		require.True(t, ok)
		assert.Equal(t, "p1", admitted.PatientID)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestHandlerFailureTriggersRedelivery(t *testing.T) {
	srv := startBroker(t)
	client := connect(t, srv, config.QueueConfig{})

	event := events.NewPatientDischarged("p1", events.DischargeNormal)
	payload, err := events.Encode(event)
	require.NoError(t, err)
	require.NoError(t, client.Send(context.Background(), "patient.discharged", payload))

	var attempts atomic.Int32
	done := make(chan struct{})
	listener := NewListener(client, zaptest.NewLogger(t), config.QueueConfig{
		Group:   "test",
		Workers: 3,
		AckWait: 500 * time.Millisecond,
	})
	listener.Register(events.PatientDischarged, func(ctx context.Context, ev events.DomainEvent) error {
		assert.Equal(t, event.EventID, ev.Meta().EventID)
		if attempts.Add(1) < 3 {
			return errors.New("downstream unavailable")
		}
		close(done)
		return nil
	})
	require.NoError(t, listener.Start(context.Background()))
	defer listener.Stop()

	select {
	case <-done:
		assert.GreaterOrEqual(t, attempts.Load(), int32(3))
	case <-time.After(10 * time.Second):
		t.Fatalf("event was not redelivered, attempts=%d", attempts.Load())
	}
}

func TestAckStopsRedelivery(t *testing.T) {
	srv := startBroker(t)
	client := connect(t, srv, config.QueueConfig{})

	event := events.NewLabResultReady("lab1", "p1", "CBC")
	payload, err := events.Encode(event)
	require.NoError(t, err)
	require.NoError(t, client.Send(context.Background(), "lab.result.ready", payload))

	var deliveries atomic.Int32
	listener := NewListener(client, zaptest.NewLogger(t), config.QueueConfig{
		Group:   "test",
		Workers: 3,
		AckWait: 500 * time.Millisecond,
	})
	listener.Register(events.LabResultReady, func(ctx context.Context, ev events.DomainEvent) error {
		deliveries.Add(1)
		return nil
	})
	require.NoError(t, listener.Start(context.Background()))
	defer listener.Stop()

	// Wait past several ack-wait windows; an acknowledged message must not
	// come back.
	time.Sleep(2 * time.Second)
	assert.Equal(t, int32(1), deliveries.Load())
}

func TestStartFailureReleasesEarlierSubscriptions(t *testing.T) {
	srv := startBroker(t)
	client := connect(t, srv, config.QueueConfig{})

	// A durable carrying the listener's derived name but a conflicting
	// subject makes the second subscription fail after the first succeeded.
	_, err := client.js.AddConsumer(StreamName, &nats.ConsumerConfig{
		Durable:       "test-patient-discharged",
		FilterSubject: "patient.transferred",
		AckPolicy:     nats.AckExplicitPolicy,
	})
	require.NoError(t, err)

	listener := NewListener(client, zaptest.NewLogger(t), config.QueueConfig{Group: "test", Workers: 3})
	noop := func(ctx context.Context, ev events.DomainEvent) error { return nil }
	listener.Register(events.PatientAdmitted, noop)
	listener.Register(events.PatientDischarged, noop)

	require.Error(t, listener.Start(context.Background()))

	// No workers survive a failed Start.
	done := make(chan struct{})
	go func() {
		listener.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers still running after failed Start")
	}

	// The subscription established before the failure was released.
	_, err = client.js.ConsumerInfo(StreamName, "test-patient-admitted")
	assert.ErrorIs(t, err, nats.ErrConsumerNotFound)
}

func TestUndecodableMessageIsTerminated(t *testing.T) {
	srv := startBroker(t)
	client := connect(t, srv, config.QueueConfig{})

	require.NoError(t, client.Send(context.Background(), "patient.admitted", []byte("{not an event")))

	event := events.NewPatientAdmitted("p1", "Jean", "Martin")
	payload, err := events.Encode(event)
	require.NoError(t, err)
	require.NoError(t, client.Send(context.Background(), "patient.admitted", payload))

	received := make(chan string, 2)
	listener := NewListener(client, zaptest.NewLogger(t), config.QueueConfig{
		Group:   "test",
		Workers: 3,
		AckWait: 500 * time.Millisecond,
	})
	listener.Register(events.PatientAdmitted, func(ctx context.Context, ev events.DomainEvent) error {
		received <- ev.Meta().EventID
		return nil
	})
	require.NoError(t, listener.Start(context.Background()))
	defer listener.Stop()

	// Only the valid event reaches the handler; the poison message is
	// terminated, not redelivered forever.
	select {
	case id := <-received:
		assert.Equal(t, event.EventID, id)
	case <-time.After(5 * time.Second):
		t.Fatal("valid event was not delivered")
	}
	select {
	case id := <-received:
		t.Fatalf("unexpected second delivery: %s", id)
	case <-time.After(1500 * time.Millisecond):
	}
}
