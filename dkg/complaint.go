package dkg

import (
	"fmt"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/ephemeral"
	"github.com/meshsig/frost/schnorr"
)

// Complaint is raised by a node that decrypts a Round Two share
// inconsistent with the sender's published commitments. It reveals the
// pairwise ECDH shared point (not either party's private key) together
// with a DLEQ proof that the revealed point really is the accuser's
// shared secret with the accused, so any third party can decrypt the
// disputed ciphertext and decide who is at fault without trusting either
// side's say-so.
type Complaint struct {
	DkgID               string
	Accuser             curve.NodeID
	Accused             curve.NodeID
	AccuserEphemeralKey *curve.Point
	SharedSecret        *curve.Point
	Proof               *schnorr.DLEQProof
}

// raiseComplaint builds a Complaint against peer accused, proving that
// sharedPoint is the ECDH shared secret between this node's ephemeral key
// and the accused's ephemeral key.
func (t *Transcript) raiseComplaint(accused curve.NodeID, sharedPoint *curve.Point) (*Complaint, error) {
	accusedBroadcast, ok := t.broadcasts[accused]
	if !ok {
		return nil, fmt.Errorf("dkg: no Round One broadcast on file for %s", accused)
	}

	proof, err := schnorr.ProveDLEQ(
		t.DkgID,
		t.ephemeral.PublicKey.Point(),
		accusedBroadcast.EphemeralPublicKey.Point(),
		sharedPoint,
		t.ephemeral.PrivateKey.Scalar(),
	)
	if err != nil {
		return nil, fmt.Errorf("dkg: proving DLEQ for complaint against %s: %w", accused, err)
	}

	return &Complaint{
		DkgID:               t.DkgID,
		Accuser:             t.SelfID,
		Accused:             accused,
		AccuserEphemeralKey: t.ephemeral.PublicKey.Point(),
		SharedSecret:        sharedPoint,
		Proof:               proof,
	}, nil
}

// ResolveComplaint is run by a third party (typically the Session
// Coordinator) holding both parties' Round One broadcasts and the
// disputed ciphertext the accused sent the accuser. It verifies the
// complaint's DLEQ proof, decrypts the disputed share using the revealed
// shared secret, and deterministically assigns fault: the accused if the
// decrypted share truly is inconsistent with its own commitments, the
// accuser otherwise.
func ResolveComplaint(
	complaint *Complaint,
	accuserBroadcast *Round1Broadcast,
	accusedBroadcast *Round1Broadcast,
	disputedCiphertext []byte,
) (atFault curve.NodeID, err error) {
	if complaint.AccuserEphemeralKey == nil || !curve.Equal(complaint.AccuserEphemeralKey, accuserBroadcast.EphemeralPublicKey.Point()) {
		return complaint.Accuser, fmt.Errorf("dkg: complaint ephemeral key does not match the accuser's Round One broadcast, blaming accuser")
	}
	if err := schnorr.VerifyDLEQ(
		complaint.DkgID,
		complaint.AccuserEphemeralKey,
		accusedBroadcast.EphemeralPublicKey.Point(),
		complaint.SharedSecret,
		complaint.Proof,
	); err != nil {
		return complaint.Accuser, fmt.Errorf("dkg: complaint DLEQ proof invalid, blaming accuser: %w", err)
	}

	symmetricKey, err := ephemeral.DeriveSymmetricKeyFromSharedPoint(complaint.SharedSecret)
	if err != nil {
		return complaint.Accuser, fmt.Errorf("dkg: deriving symmetric key for complaint resolution: %w", err)
	}

	_, valid := decryptAndVerifyShare(symmetricKey, disputedCiphertext, complaint.Accuser.Scalar(), accusedBroadcast.Commitments)
	if valid {
		// The share was valid all along; the accuser complained in bad
		// faith (or against a stale/mismatched commitment list).
		return complaint.Accuser, nil
	}
	return complaint.Accused, nil
}
