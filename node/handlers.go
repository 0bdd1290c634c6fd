package node

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/dkg"
	"github.com/meshsig/frost/frost"
	"github.com/meshsig/frost/schnorr"
	"github.com/meshsig/frost/wire"
)

// Dispatch implements transport.HandlerFunc: it decodes a wire.Request,
// authorizes the caller, routes to the matching handler, and encodes
// the wire.Response. It is the single entry point an Engine registers
// with a transport.Transport for every protocol it serves.
func (e *Engine) Dispatch(ctx context.Context, caller curve.NodeID, body []byte) ([]byte, error) {
	var req wire.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if e.Auth != nil && !e.Auth.Authorized(caller, string(req.Method)) {
		return e.respondError(req.RequestID, wire.StatusError, ErrUnauthorized)
	}

	e.Logger.Debugw("dispatching request", "method", req.Method, "caller", caller.String())

	var (
		payload interface{}
		status  = wire.StatusSuccessful
		err     error
	)

	switch req.Method {
	case wire.MethodRound1:
		payload, err = e.handleRound1(req)
	case wire.MethodRound2:
		payload, err = e.handleRound2(req)
	case wire.MethodRound3:
		var resp *wire.Round3Response
		resp, err = e.handleRound3(req)
		if resp != nil && resp.Complaint != nil {
			status = wire.StatusComplaint
		}
		payload = resp
	case wire.MethodGenerateNonces:
		payload, err = e.handleGenerateNonces(req)
	case wire.MethodSign:
		payload, err = e.handleSign(ctx, req)
	default:
		err = fmt.Errorf("node: unknown method %q", req.Method)
	}

	if err != nil {
		e.Logger.Warnw("request failed", "method", req.Method, "caller", caller.String(), "reason", err.Error())
		return e.respondError(req.RequestID, wire.StatusError, err)
	}

	return e.respond(req.RequestID, status, payload)
}

func (e *Engine) respond(requestID string, status wire.Status, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("node: encoding response payload: %w", err)
	}
	return json.Marshal(wire.Response{RequestID: requestID, Status: status, Payload: raw})
}

func (e *Engine) respondError(requestID string, status wire.Status, cause error) ([]byte, error) {
	return json.Marshal(wire.Response{RequestID: requestID, Status: status, Reason: cause.Error()})
}

func hashBroadcast(b wire.Round1Broadcast) ([]byte, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("node: hashing broadcast: %w", err)
	}
	sum := sha256.Sum256(raw)
	return sum[:], nil
}

func (e *Engine) handleRound1(req wire.Request) (*wire.Round1Response, error) {
	var params wire.Round1Parameters
	if err := json.Unmarshal(req.Parameters, &params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	party, err := parsePartyList(params.Party)
	if err != nil {
		return nil, err
	}

	lock := e.lockSession(params.DkgID)
	lock.Lock()
	defer lock.Unlock()

	transcript := dkg.New(params.DkgID, e.SelfID(), params.Threshold, party)
	broadcast, err := transcript.Round1(e.LongTerm)
	if err != nil {
		return nil, fmt.Errorf("node: round one for %s: %w", params.DkgID, err)
	}
	e.setTranscript(params.DkgID, transcript)

	wireBroadcast := broadcastToWire(broadcast)
	digest, err := hashBroadcast(wireBroadcast)
	if err != nil {
		return nil, err
	}
	sig, err := schnorr.Sign("round1-broadcast", params.DkgID+":"+fmt.Sprintf("%x", digest), e.LongTerm.Public, e.LongTerm.Private)
	if err != nil {
		return nil, fmt.Errorf("node: signing round one broadcast: %w", err)
	}

	return &wire.Round1Response{Broadcast: wireBroadcast, ValidationSig: popToWire(sig)}, nil
}

func (e *Engine) handleRound2(req wire.Request) (*wire.Round2Response, error) {
	var params wire.Round2Parameters
	if err := json.Unmarshal(req.Parameters, &params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	lock := e.lockSession(params.DkgID)
	lock.Lock()
	defer lock.Unlock()

	transcript, ok := e.transcript(params.DkgID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, params.DkgID)
	}

	broadcasts := make(map[curve.NodeID]*dkg.Round1Broadcast, len(params.BroadcastedData))
	longTermKeys := make(map[curve.NodeID]*curve.Point, len(params.BroadcastedData))
	for idStr, wb := range params.BroadcastedData {
		b, err := broadcastFromWire(wb)
		if err != nil {
			return nil, err
		}
		id, err := parseNodeID(idStr)
		if err != nil {
			return nil, err
		}
		broadcasts[id] = b
		info, err := e.Directory.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf("node: resolving long-term key for %s: %w", id, err)
		}
		longTermKeys[id] = info.LongTermPubKey
	}

	ciphertexts, err := transcript.Round2(broadcasts, longTermKeys)
	if err != nil {
		return nil, fmt.Errorf("node: round two for %s: %w", params.DkgID, err)
	}

	out := make(map[string]wire.HexBytes, len(ciphertexts))
	for id, ct := range ciphertexts {
		out[id.String()] = ct
	}
	return &wire.Round2Response{Ciphertexts: out}, nil
}

func (e *Engine) handleRound3(req wire.Request) (*wire.Round3Response, error) {
	var params wire.Round3Parameters
	if err := json.Unmarshal(req.Parameters, &params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	lock := e.lockSession(params.DkgID)
	lock.Lock()
	defer lock.Unlock()

	transcript, ok := e.transcript(params.DkgID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, params.DkgID)
	}

	ciphertextsForMe := make(map[curve.NodeID][]byte, len(params.SendData))
	for idStr, ct := range params.SendData {
		id, err := parseNodeID(idStr)
		if err != nil {
			return nil, err
		}
		ciphertextsForMe[id] = ct
	}

	result, err := transcript.Round3(ciphertextsForMe, e.LongTerm)
	if err != nil {
		return nil, fmt.Errorf("node: round three for %s: %w", params.DkgID, err)
	}

	if len(result.Complaints) > 0 {
		proofs := make([]wire.ComplaintProof, len(result.Complaints))
		for i, c := range result.Complaints {
			proofs[i] = wire.ComplaintProof{
				Accused:             c.Accused.String(),
				AccuserEphemeralKey: wire.Point(c.AccuserEphemeralKey),
				SharedSecret:        wire.Point(c.SharedSecret),
				Proof:               dleqToWire(c.Proof),
			}
		}
		return &wire.Round3Response{Complaint: &wire.Round3ComplaintData{Proofs: proofs}}, nil
	}

	e.setKeyShare(params.DkgID, result.KeyShare)
	sig := popToWire(result.IntegrityProof)
	return &wire.Round3Response{
		Data: &wire.Round3Data{
			DkgPublicKey: wire.Point(result.KeyShare.GroupPublicKey),
			PublicShare:  wire.Point(result.KeyShare.PublicKey),
		},
		ValidationSig: &sig,
	}, nil
}

func (e *Engine) handleGenerateNonces(req wire.Request) (*wire.GenerateNoncesResponse, error) {
	var params wire.GenerateNoncesParameters
	if err := json.Unmarshal(req.Parameters, &params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if params.NumberOfNonces <= 0 {
		return nil, fmt.Errorf("%w: number_of_nonces must be positive", ErrInvalidRequest)
	}

	// Nonces are bound to the node's long-term secret by construction
	// (see frost.GenerateNoncePair); they are not tied to any one
	// dkg_id, so no per-session key is required here.
	secretShare := e.LongTerm.Private
	commitments, rejected, err := e.Nonces.Generate(e.SelfID(), secretShare, params.NumberOfNonces)
	if err != nil {
		return nil, err
	}
	if rejected > 0 {
		e.Logger.Warnw("nonce pool at capacity, rejecting excess request",
			"requested", params.NumberOfNonces, "rejected", rejected, "pool_len", e.Nonces.Len())
	}

	out := make([]wire.NonceCommitment, len(commitments))
	for i, c := range commitments {
		out[i] = wire.NonceCommitment{ID: c.PoolID, D: wire.Point(c.D), E: wire.Point(c.E)}
	}
	return &wire.GenerateNoncesResponse{Nonces: out, Rejected: rejected}, nil
}

func (e *Engine) handleSign(ctx context.Context, req wire.Request) (*wire.SignResponse, error) {
	var params wire.SignParameters
	if err := json.Unmarshal(req.Parameters, &params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	share, ok := e.keyShare(params.DkgID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoKeyShare, params.DkgID)
	}

	var ownPoolID string
	commitments := make([]*frost.NonceCommitment, len(params.CommitmentList))
	for i, sc := range params.CommitmentList {
		id, err := parseNodeID(sc.SignerID)
		if err != nil {
			return nil, err
		}
		if id == e.SelfID() {
			ownPoolID = sc.Nonce.ID
		}
		if sc.Nonce.D.Point == nil || sc.Nonce.E.Point == nil {
			return nil, fmt.Errorf("%w: commitment from %s is incomplete", ErrInvalidRequest, sc.SignerID)
		}
		commitments[i] = &frost.NonceCommitment{ID: id, D: sc.Nonce.D.Point, E: sc.Nonce.E.Point}
	}
	if ownPoolID == "" {
		return nil, fmt.Errorf("%w: own commitment missing from request", ErrNonceMissing)
	}

	nonce, err := e.Nonces.Take(ownPoolID)
	if err != nil {
		return nil, err
	}
	defer nonce.Zeroize()

	if e.Validator == nil {
		return nil, fmt.Errorf("node: no AppValidator configured")
	}
	validated, err := e.Validator.Validate(req.InputData)
	if err != nil {
		return nil, fmt.Errorf("node: validating signing input: %w", err)
	}

	z, err := frost.PartialSign(share, nonce, validated.Digest, commitments)
	if err != nil {
		return nil, fmt.Errorf("node: partial signing for %s: %w", params.DkgID, err)
	}

	r, err := frost.AggregatedNonce(share.GroupPublicKey, validated.Digest, commitments)
	if err != nil {
		return nil, fmt.Errorf("node: computing aggregated nonce for %s: %w", params.DkgID, err)
	}

	return &wire.SignResponse{SignatureData: wire.SignatureData{
		SignerID:              e.SelfID().String(),
		Z:                     wire.Scalar(z),
		AggregatedPublicNonce: wire.Point(r),
	}}, nil
}
