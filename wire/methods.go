package wire

// PoP is the wire encoding of a schnorr.PoP proof of possession.
type PoP struct {
	Nonce    HexPoint  `json:"nonce"`
	Response HexScalar `json:"response"`
}

// DLEQProof is the wire encoding of a schnorr.DLEQProof.
type DLEQProof struct {
	Commit1  HexPoint  `json:"commit1"`
	Commit2  HexPoint  `json:"commit2"`
	Response HexScalar `json:"response"`
}

// Round1Parameters are the parameters of a round1 request: the party
// roster, the DKG identifier, the application namespacing this group,
// and the signing threshold.
type Round1Parameters struct {
	Party     []string `json:"party"`
	DkgID     string   `json:"dkg_id"`
	AppName   string   `json:"app_name"`
	Threshold int      `json:"threshold"`
}

// Round1Broadcast is the wire encoding of a dkg.Round1Broadcast.
type Round1Broadcast struct {
	SenderID           string     `json:"sender_id"`
	Commitments        []HexPoint `json:"commitments"`
	LongTermKeyPoP     PoP        `json:"long_term_key_pop"`
	ConstantTermPoP    PoP        `json:"constant_term_pop"`
	EphemeralPublicKey HexBytes   `json:"ephemeral_public_key"`
}

// Round1Response is the payload of a successful round1 reply.
type Round1Response struct {
	Broadcast      Round1Broadcast `json:"broadcast"`
	ValidationSig  PoP             `json:"validation_sig"`
}

// Round2Parameters carries the Round One broadcasts gathered by the
// coordinator, keyed by sender NodeID hex string.
type Round2Parameters struct {
	DkgID          string                     `json:"dkg_id"`
	BroadcastedData map[string]Round1Broadcast `json:"broadcasted_data"`
}

// Round2Response carries the ciphertexts this node sealed for every
// other surviving party, keyed by recipient NodeID hex string.
type Round2Response struct {
	Ciphertexts map[string]HexBytes `json:"ciphertexts"`
}

// Round3Parameters carries, for a single node, the Round Two
// ciphertexts addressed to it by every sender.
type Round3Parameters struct {
	DkgID    string               `json:"dkg_id"`
	SendData map[string]HexBytes `json:"send_data"`
}

// Round3Data is the successful-path payload: the finalized group key
// and this node's public share.
type Round3Data struct {
	DkgPublicKey HexPoint `json:"dkg_public_key"`
	PublicShare  HexPoint `json:"public_share"`
}

// Round3ComplaintData is the complaint-path payload: one proof per
// peer this node is raising a complaint against.
type Round3ComplaintData struct {
	Proofs []ComplaintProof `json:"proofs"`
}

// ComplaintProof is the wire encoding of a dkg.Complaint.
type ComplaintProof struct {
	Accused             string    `json:"accused"`
	AccuserEphemeralKey HexPoint  `json:"accuser_ephemeral_key"`
	SharedSecret        HexPoint  `json:"shared_secret"`
	Proof               DLEQProof `json:"proof"`
}

// Round3Response is the payload of a round3 reply: Data/ValidationSig
// populated on success, Status COMPLAINT and Complaint.Proofs populated
// if this node disqualified any peer.
type Round3Response struct {
	Data          *Round3Data           `json:"data,omitempty"`
	ValidationSig *PoP                  `json:"validation_sig,omitempty"`
	Complaint     *Round3ComplaintData `json:"complaint,omitempty"`
}

// GenerateNoncesParameters requests a batch of fresh nonce pairs be
// added to a node's local nonce pool.
type GenerateNoncesParameters struct {
	NumberOfNonces int `json:"number_of_nonces"`
}

// NonceCommitment is the wire encoding of a frost.NonceCommitment,
// identified by a pool-local id the node assigns so a later sign
// request can reference it without resending the points.
type NonceCommitment struct {
	ID string   `json:"id"`
	D  HexPoint `json:"d"`
	E  HexPoint `json:"e"`
}

// GenerateNoncesResponse reports the commitments for the newly
// generated nonces; their secrets stay local to the node. Rejected
// counts how many of the requested nonces were not generated because
// the node's pool is at capacity; a nonzero value tells the caller to
// back off rather than immediately retrying for the shortfall.
type GenerateNoncesResponse struct {
	Nonces   []NonceCommitment `json:"nonces"`
	Rejected int               `json:"rejected,omitempty"`
}

// SignParameters requests a partial signature over InputData, using
// the nonce commitments already published by every participating
// signer for this signing session.
type SignParameters struct {
	DkgID          string            `json:"dkg_id"`
	CommitmentList []SignerCommitment `json:"commitments_list"`
}

// SignerCommitment names a signer's NodeID alongside the pool-local
// nonce commitment id it is expected to consume for this session.
type SignerCommitment struct {
	SignerID string          `json:"signer_id"`
	Nonce    NonceCommitment `json:"nonce"`
}

// SignatureData carries this signer's contribution to an aggregated
// signature: its partial scalar z_i, and the signer-independent
// aggregated public nonce R every participant computes identically.
type SignatureData struct {
	SignerID            string   `json:"signer_id"`
	Z                    HexScalar `json:"z"`
	AggregatedPublicNonce HexPoint `json:"aggregated_public_nonce"`
}

// SignResponse is the payload of a successful sign reply.
type SignResponse struct {
	SignatureData SignatureData `json:"signature_data"`
}
