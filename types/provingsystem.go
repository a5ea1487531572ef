// Package types defines the data model of the batch submission protocol:
// the proving-system identifier, the verification data a client submits,
// the fixed-size commitment derived from it, and the messages exchanged
// with the batching service.
package types

import (
	"encoding/json"
	"fmt"
)

// ProvingSystemId identifies the zero-knowledge proving system a proof was
// produced under. The set is closed; the identifier selects which auxiliary
// fields a VerificationData must carry.
type ProvingSystemId uint8

const (
	GnarkPlonkBls12_381 ProvingSystemId = iota
	GnarkPlonkBn254
	Groth16Bn254
	// SP1 proofs carry a VM program image instead of a verification key.
	// This is the default system for new submissions.
	SP1
	Halo2KZG
	Halo2IPA
)

// provingSystemNames are the canonical wire tags, identical to the CLI
// flag values.
var provingSystemNames = map[ProvingSystemId]string{
	GnarkPlonkBls12_381: "GnarkPlonkBls12_381",
	GnarkPlonkBn254:     "GnarkPlonkBn254",
	Groth16Bn254:        "Groth16Bn254",
	SP1:                 "SP1",
	Halo2KZG:            "Halo2KZG",
	Halo2IPA:            "Halo2IPA",
}

// InvalidProvingSystemError reports an unrecognized proving system tag.
// It is raised before any network activity.
type InvalidProvingSystemError struct {
	Name string
}

func (e *InvalidProvingSystemError) Error() string {
	return fmt.Sprintf("types: invalid proving system %q, available systems are: "+
		"[GnarkPlonkBls12_381, GnarkPlonkBn254, Groth16Bn254, SP1, Halo2KZG, Halo2IPA]", e.Name)
}

// ParseProvingSystem maps a wire tag to its ProvingSystemId.
func ParseProvingSystem(name string) (ProvingSystemId, error) {
	for id, n := range provingSystemNames {
		if n == name {
			return id, nil
		}
	}
	return 0, &InvalidProvingSystemError{Name: name}
}

// Valid reports whether the identifier is a member of the closed set.
func (id ProvingSystemId) Valid() bool {
	_, ok := provingSystemNames[id]
	return ok
}

// String returns the canonical tag, or a diagnostic for unknown values.
func (id ProvingSystemId) String() string {
	if n, ok := provingSystemNames[id]; ok {
		return n
	}
	return fmt.Sprintf("ProvingSystemId(%d)", uint8(id))
}

// MarshalJSON encodes the identifier as its canonical tag.
func (id ProvingSystemId) MarshalJSON() ([]byte, error) {
	n, ok := provingSystemNames[id]
	if !ok {
		return nil, &InvalidProvingSystemError{Name: id.String()}
	}
	return json.Marshal(n)
}

// UnmarshalJSON decodes a canonical tag.
func (id *ProvingSystemId) UnmarshalJSON(data []byte) error {
	var n string
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	parsed, err := ParseProvingSystem(n)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
