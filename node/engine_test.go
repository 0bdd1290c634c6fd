package node

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/dkg"
	"github.com/meshsig/frost/schnorr"
	"github.com/meshsig/frost/transport"
	"github.com/meshsig/frost/transport/local"
	"github.com/meshsig/frost/wire"
)

const testProtocol = "frost"

// passthroughValidator decodes input_data as a JSON string and uses its
// bytes as both the canonical message and the digest, which is sufficient for exercising
// the signing handler end to end without a real application layer.
type passthroughValidator struct{}

func (passthroughValidator) Validate(input []byte) (transport.ValidatedInput, error) {
	var message string
	if err := json.Unmarshal(input, &message); err != nil {
		return transport.ValidatedInput{}, err
	}
	return transport.ValidatedInput{CanonicalBytes: []byte(message), Digest: []byte(message)}, nil
}

type testParticipant struct {
	longTerm *dkg.LongTermKey
	engine   *Engine
	net      *local.Network
}

func newTestParticipants(t *testing.T, n int) ([]*testParticipant, string) {
	t.Helper()
	networkName := t.Name() + "-" + uuid.NewString()

	parts := make([]*testParticipant, n)
	for i := range parts {
		lt, err := dkg.GenerateLongTermKey()
		if err != nil {
			t.Fatalf("GenerateLongTermKey: %v", err)
		}
		parts[i] = &testParticipant{longTerm: lt}
	}

	for _, p := range parts {
		net := local.Join(networkName, p.longTerm.NodeID(), transport.PeerInfo{LongTermPubKey: p.longTerm.Public})
		p.net = net
		p.engine = NewEngine(p.longTerm, net, nil, passthroughValidator{}, local.NewMemoryDataManager(), nil)
		net.RegisterHandler(testProtocol, p.engine.Dispatch)
	}

	return parts, networkName
}

func call(t *testing.T, caller *local.Network, peer curve.NodeID, method wire.Method, params interface{}) wire.Response {
	t.Helper()
	rawParams, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	req := wire.Request{RequestID: uuid.NewString(), Method: method, Parameters: rawParams}
	reqBytes, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	respBytes, err := caller.Send(context.Background(), peer, testProtocol, reqBytes, time.Now().Add(5*time.Second))
	if err != nil {
		t.Fatalf("Send(%s): %v", method, err)
	}

	var resp wire.Response
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != wire.StatusSuccessful {
		t.Fatalf("%s: status=%s reason=%s", method, resp.Status, resp.Reason)
	}
	return resp
}

// runDKGOverWire drives parts through rounds one through three using
// the bootstrap node (parts[0]'s network handle) as the caller, the way
// a Session Coordinator would, and asserts that every node's finalized
// group public key agrees.
func runDKGOverWire(t *testing.T, parts []*testParticipant, dkgID string, threshold int) {
	t.Helper()
	coordinator := parts[0].net

	party := make([]string, len(parts))
	for i, p := range parts {
		party[i] = p.longTerm.NodeID().String()
	}

	round1Broadcasts := make(map[string]wire.Round1Broadcast, len(parts))
	for _, p := range parts {
		resp := call(t, coordinator, p.longTerm.NodeID(), wire.MethodRound1, wire.Round1Parameters{
			Party: party, DkgID: dkgID, AppName: "test", Threshold: threshold,
		})
		var payload wire.Round1Response
		if err := json.Unmarshal(resp.Payload, &payload); err != nil {
			t.Fatalf("unmarshal round1 payload: %v", err)
		}
		round1Broadcasts[p.longTerm.NodeID().String()] = payload.Broadcast
	}

	round2Ciphertexts := make(map[string]map[string]wire.HexBytes, len(parts))
	for _, p := range parts {
		resp := call(t, coordinator, p.longTerm.NodeID(), wire.MethodRound2, wire.Round2Parameters{
			DkgID: dkgID, BroadcastedData: round1Broadcasts,
		})
		var payload wire.Round2Response
		if err := json.Unmarshal(resp.Payload, &payload); err != nil {
			t.Fatalf("unmarshal round2 payload: %v", err)
		}
		round2Ciphertexts[p.longTerm.NodeID().String()] = payload.Ciphertexts
	}

	var groupKey *wire.HexPoint
	for _, p := range parts {
		recipient := p.longTerm.NodeID().String()
		sendData := make(map[string]wire.HexBytes, len(parts))
		for sender, ciphertexts := range round2Ciphertexts {
			sendData[sender] = ciphertexts[recipient]
		}

		resp := call(t, coordinator, p.longTerm.NodeID(), wire.MethodRound3, wire.Round3Parameters{
			DkgID: dkgID, SendData: sendData,
		})
		var payload wire.Round3Response
		if err := json.Unmarshal(resp.Payload, &payload); err != nil {
			t.Fatalf("unmarshal round3 payload: %v", err)
		}
		if payload.Data == nil {
			t.Fatalf("round3 for %s produced no key share", recipient)
		}
		if groupKey == nil {
			groupKey = &payload.Data.DkgPublicKey
		} else if !curve.Equal(groupKey.Point, payload.Data.DkgPublicKey.Point) {
			t.Fatalf("group key mismatch for %s", recipient)
		}
	}
}

func TestDKGAndSignOverWire(t *testing.T) {
	parts, _ := newTestParticipants(t, 3)
	const dkgID = "dkg-wire-1"
	const threshold = 2

	runDKGOverWire(t, parts, dkgID, threshold)

	coordinator := parts[0].net

	signers := parts[:2]
	nonceCommitments := make([]wire.SignerCommitment, len(signers))
	for i, p := range signers {
		resp := call(t, coordinator, p.longTerm.NodeID(), wire.MethodGenerateNonces, wire.GenerateNoncesParameters{NumberOfNonces: 1})
		var payload wire.GenerateNoncesResponse
		if err := json.Unmarshal(resp.Payload, &payload); err != nil {
			t.Fatalf("unmarshal generate_nonces payload: %v", err)
		}
		nonceCommitments[i] = wire.SignerCommitment{SignerID: p.longTerm.NodeID().String(), Nonce: payload.Nonces[0]}
	}

	message := []byte("threshold signing test message")
	inputData := mustMarshal(t, string(message))
	var shares []wire.SignatureData
	var aggregatedR *wire.HexPoint
	for _, p := range signers {
		req := wire.Request{
			RequestID:  uuid.NewString(),
			Method:     wire.MethodSign,
			Parameters: mustMarshal(t, wire.SignParameters{DkgID: dkgID, CommitmentList: nonceCommitments}),
			InputData:  inputData,
		}
		reqBytes := mustMarshal(t, req)
		respBytes, err := coordinator.Send(context.Background(), p.longTerm.NodeID(), testProtocol, reqBytes, time.Now().Add(5*time.Second))
		if err != nil {
			t.Fatalf("sign Send: %v", err)
		}
		var resp wire.Response
		if err := json.Unmarshal(respBytes, &resp); err != nil {
			t.Fatalf("unmarshal sign response: %v", err)
		}
		if resp.Status != wire.StatusSuccessful {
			t.Fatalf("sign: status=%s reason=%s", resp.Status, resp.Reason)
		}
		var payload wire.SignResponse
		if err := json.Unmarshal(resp.Payload, &payload); err != nil {
			t.Fatalf("unmarshal sign payload: %v", err)
		}
		shares = append(shares, payload.SignatureData)
		if aggregatedR == nil {
			aggregatedR = &payload.SignatureData.AggregatedPublicNonce
		} else if !curve.Equal(aggregatedR.Point, payload.SignatureData.AggregatedPublicNonce.Point) {
			t.Fatalf("signers disagree on aggregated nonce")
		}
	}

	groupPublicKey := lookupGroupKey(t, parts[0])

	sig := &schnorr.Signature{R: aggregatedR.Point, Z: sumShares(shares)}
	if err := schnorr.Verify(sig, groupPublicKey, message); err != nil {
		t.Fatalf("aggregated signature failed verification: %v", err)
	}
}

func lookupGroupKey(t *testing.T, p *testParticipant) *curve.Point {
	t.Helper()
	share, ok := p.engine.keyShare("dkg-wire-1")
	if !ok {
		t.Fatal("no key share on file")
	}
	return share.GroupPublicKey
}

func sumShares(shares []wire.SignatureData) *big.Int {
	z := big.NewInt(0)
	for _, s := range shares {
		z.Add(z, s.Z.Int)
		z.Mod(z, curve.Order())
	}
	return z
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
