package types

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/zkbatch/zkbatch/crypto"
	"github.com/zkbatch/zkbatch/merkle"
)

// VerificationDataCommitment is the fixed-size commitment to one
// submission: three 32-byte keccak digests plus the proof generator
// address copied verbatim. It is the Merkle leaf payload of a batch.
type VerificationDataCommitment struct {
	ProofCommitment                common.Hash    `json:"proof_commitment"`
	PubInputCommitment             common.Hash    `json:"pub_input_commitment"`
	ProvingSystemAuxDataCommitment common.Hash    `json:"proving_system_aux_data_commitment"`
	ProofGeneratorAddr             common.Address `json:"proof_generator_addr"`
}

// LeafHash is the batch tree's leaf digest: the four commitment fields
// concatenated in declaration order and hashed once. The same digest is
// what a client signs, so a valid inclusion proof ties back to the
// original signer.
func (c VerificationDataCommitment) LeafHash() common.Hash {
	return crypto.Keccak256Hash(
		c.ProofCommitment.Bytes(),
		c.PubInputCommitment.Bytes(),
		c.ProvingSystemAuxDataCommitment.Bytes(),
		c.ProofGeneratorAddr.Bytes(),
	)
}

// CommitmentBatch is the Merkle backend for batches of verification data
// commitments: keccak leaves over the concatenated commitment fields and
// keccak parents over concatenated children.
type CommitmentBatch struct{}

var _ merkle.Backend[VerificationDataCommitment] = CommitmentBatch{}

// HashData implements merkle.Backend.
func (CommitmentBatch) HashData(leaf VerificationDataCommitment) common.Hash {
	return leaf.LeafHash()
}

// HashParent implements merkle.Backend.
func (CommitmentBatch) HashParent(left, right common.Hash) common.Hash {
	return crypto.Keccak256Hash(left.Bytes(), right.Bytes())
}

// NewBatchTree builds the batch Merkle tree over commitments in
// submission order.
func NewBatchTree(commitments []VerificationDataCommitment) (*merkle.Tree[VerificationDataCommitment], error) {
	return merkle.NewTree[VerificationDataCommitment](CommitmentBatch{}, commitments)
}
