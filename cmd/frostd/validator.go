package main

import (
	"encoding/json"

	"github.com/meshsig/frost/transport"
)

// stringValidator treats a JSON-encoded string as both the canonical
// message and its digest, matching the minimal AppValidator used by
// the node and coordinator packages' own wire tests. A real deployment
// supplies its own AppValidator, e.g. one that canonicalizes a
// transaction or attestation payload before hashing it.
type stringValidator struct{}

func (stringValidator) Validate(input []byte) (transport.ValidatedInput, error) {
	var message string
	if err := json.Unmarshal(input, &message); err != nil {
		return transport.ValidatedInput{}, err
	}
	return transport.ValidatedInput{CanonicalBytes: []byte(message), Digest: []byte(message)}, nil
}
