package testutil

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

// Broker is an embedded NATS server with JetStream, torn down with the test
type Broker struct {
	Server *server.Server
	Conn   *nats.Conn
	JS     nats.JetStreamContext
}

// URL returns the client URL of the broker
func (b *Broker) URL() string {
	return b.Server.ClientURL()
}

// StartBroker runs a JetStream-enabled server on a free local port, storing
// streams under the test's temp dir, and connects a client to it
func StartBroker(t *testing.T) *Broker {
	t.Helper()

	s, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      server.RANDOM_PORT,
		NoLog:     true,
		NoSigs:    true,
		JetStream: true,
		StoreDir:  t.TempDir(),
	})
	require.NoError(t, err)

	go s.Start()
	if !s.ReadyForConnections(10 * time.Second) {
		t.Fatal("embedded NATS server did not become ready")
	}

	nc, err := nats.Connect(s.ClientURL(), nats.Timeout(5*time.Second))
	require.NoError(t, err)

	js, err := nc.JetStream(nats.MaxWait(5 * time.Second))
	require.NoError(t, err)

	t.Cleanup(func() {
		nc.Close()
		s.Shutdown()
		s.WaitForShutdown()
	})

	return &Broker{Server: s, Conn: nc, JS: js}
}
