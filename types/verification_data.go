package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/zkbatch/zkbatch/crypto"
)

// MissingParameterError reports an auxiliary field required by the chosen
// proving system that was not supplied. It is raised before any network
// activity.
type MissingParameterError struct {
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("types: missing required parameter %s for the chosen proving system", e.Param)
}

// AuxDataError reports verification data whose auxiliary fields violate the
// per-proving-system exclusivity rule: exactly one of vm_program_code and
// verification_key may be populated, chosen by the proving system.
type AuxDataError struct {
	System ProvingSystemId
	Reason string
}

func (e *AuxDataError) Error() string {
	return fmt.Sprintf("types: invalid auxiliary data for %s: %s", e.System, e.Reason)
}

// VerificationData is one proof submission: the opaque proof artifact, the
// auxiliary inputs its proving system requires, and the address of the
// proof generator. Optional fields are nil when absent; absence is
// meaningful and commits to zero bytes (see Commitment). The struct is
// immutable once constructed.
type VerificationData struct {
	ProvingSystem      ProvingSystemId `json:"proving_system"`
	Proof              hexutil.Bytes   `json:"proof"`
	PubInput           *hexutil.Bytes  `json:"pub_input"`
	VerificationKey    *hexutil.Bytes  `json:"verification_key"`
	VmProgramCode      *hexutil.Bytes  `json:"vm_program_code"`
	ProofGeneratorAddr common.Address  `json:"proof_generator_addr"`
}

// Validate checks the per-proving-system field-presence invariant:
//
//   - SP1 requires vm_program_code and forbids verification_key;
//   - every other system requires verification_key and pub_input and
//     forbids vm_program_code.
//
// Violations are recoverable errors, detected client-side before any
// network round trip.
func (vd *VerificationData) Validate() error {
	if !vd.ProvingSystem.Valid() {
		return &InvalidProvingSystemError{Name: vd.ProvingSystem.String()}
	}

	if vd.VmProgramCode != nil && vd.VerificationKey != nil {
		return &AuxDataError{
			System: vd.ProvingSystem,
			Reason: "both vm_program_code and verification_key are set",
		}
	}

	switch vd.ProvingSystem {
	case SP1:
		if vd.VmProgramCode == nil {
			return &MissingParameterError{Param: "vm_program_code"}
		}
		if vd.VerificationKey != nil {
			return &AuxDataError{
				System: vd.ProvingSystem,
				Reason: "verification_key is not accepted for SP1",
			}
		}
	default:
		if vd.VmProgramCode != nil {
			return &AuxDataError{
				System: vd.ProvingSystem,
				Reason: "vm_program_code is only accepted for SP1",
			}
		}
		if vd.VerificationKey == nil {
			return &MissingParameterError{Param: "verification_key"}
		}
		if vd.PubInput == nil {
			return &MissingParameterError{Param: "pub_input"}
		}
	}
	return nil
}

// Commitment reduces the verification data to its fixed-size commitment.
// Each field is hashed independently; fields are never concatenated at
// this stage. Absent optional fields commit to 32 zero bytes, not to the
// hash of an empty sequence; this encoding is part of the protocol and
// must be bit-exact on both client and verifier sides.
func (vd *VerificationData) Commitment() VerificationDataCommitment {
	var c VerificationDataCommitment

	c.ProofCommitment = crypto.Keccak256Hash(vd.Proof)
	if vd.PubInput != nil {
		c.PubInputCommitment = crypto.Keccak256Hash(*vd.PubInput)
	}
	// The auxiliary commitment source depends on the proving system: the
	// VM program image for SP1, the verification key otherwise. Validate
	// rejects inputs where both are populated.
	if vd.VmProgramCode != nil {
		c.ProvingSystemAuxDataCommitment = crypto.Keccak256Hash(*vd.VmProgramCode)
	} else if vd.VerificationKey != nil {
		c.ProvingSystemAuxDataCommitment = crypto.Keccak256Hash(*vd.VerificationKey)
	}
	c.ProofGeneratorAddr = vd.ProofGeneratorAddr

	return c
}
