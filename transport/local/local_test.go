package local

import (
	"context"
	"testing"
	"time"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/transport"
)

func TestSendRoundTrip(t *testing.T) {
	networkName := t.Name()

	serverID := curve.NodeID{1}
	clientID := curve.NodeID{2}

	server := Join(networkName, serverID, transport.PeerInfo{Address: "server"})
	client := Join(networkName, clientID, transport.PeerInfo{Address: "client"})
	defer server.Leave()
	defer client.Leave()

	server.RegisterHandler("echo", func(ctx context.Context, caller curve.NodeID, body []byte) ([]byte, error) {
		if caller != clientID {
			t.Fatalf("unexpected caller %s", caller)
		}
		return append([]byte("echo:"), body...), nil
	})

	resp, err := client.Send(context.Background(), serverID, "echo", []byte("hi"), time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if string(resp) != "echo:hi" {
		t.Fatalf("unexpected response %q", resp)
	}

	if _, err := client.Lookup(serverID); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if _, err := client.Send(context.Background(), curve.NodeID{9}, "echo", nil, time.Now().Add(time.Second)); err == nil {
		t.Fatal("expected error sending to unknown peer")
	}
}

func TestSendToMissingHandler(t *testing.T) {
	networkName := t.Name()

	serverID := curve.NodeID{1}
	clientID := curve.NodeID{2}
	server := Join(networkName, serverID, transport.PeerInfo{})
	client := Join(networkName, clientID, transport.PeerInfo{})
	defer server.Leave()
	defer client.Leave()

	_, err := client.Send(context.Background(), serverID, "nope", nil, time.Now().Add(time.Second))
	if err == nil {
		t.Fatal("expected error for unregistered protocol")
	}
}
