package wire

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/meshsig/frost/curve"
)

// HexPoint is a curve point that marshals to JSON as its compressed
// hex encoding, per §6's "fixed-length compressed encodings, hex string
// on the wire" requirement.
type HexPoint struct {
	*curve.Point
}

func Point(p *curve.Point) HexPoint { return HexPoint{p} }

func (h HexPoint) MarshalJSON() ([]byte, error) {
	if h.Point == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(hex.EncodeToString(curve.SerializePoint(h.Point)))
}

func (h *HexPoint) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("wire: decoding point: %w", err)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("wire: decoding point hex: %w", err)
	}
	p, err := curve.DeserializePoint(raw)
	if err != nil {
		return fmt.Errorf("wire: decoding point: %w", err)
	}
	h.Point = p
	return nil
}

// HexScalar is a big.Int that marshals to JSON as a fixed-length,
// big-endian hex string.
type HexScalar struct {
	*big.Int
}

func Scalar(s *big.Int) HexScalar { return HexScalar{s} }

func (h HexScalar) MarshalJSON() ([]byte, error) {
	if h.Int == nil {
		return json.Marshal(nil)
	}
	b := make([]byte, 32)
	h.Int.FillBytes(b)
	return json.Marshal(hex.EncodeToString(b))
}

func (h *HexScalar) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("wire: decoding scalar: %w", err)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("wire: decoding scalar hex: %w", err)
	}
	h.Int = new(big.Int).SetBytes(raw)
	return nil
}

// HexBytes marshals an arbitrary byte slice (ciphertexts, proofs-in-
// transit) as a hex string.
type HexBytes []byte

func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

func (h *HexBytes) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("wire: decoding bytes: %w", err)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("wire: decoding bytes hex: %w", err)
	}
	*h = raw
	return nil
}
