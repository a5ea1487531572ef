package types

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/zkbatch/zkbatch/crypto"
	"github.com/zkbatch/zkbatch/merkle"
)

// ClientMessage is the wire message a client sends to the batching
// service: verification data plus a recoverable signature over the keccak
// leaf hash of its commitment. The signature binds the submission to the
// exact digest that becomes the batch tree's leaf, not to the raw proof
// bytes.
type ClientMessage struct {
	VerificationData VerificationData `json:"verification_data"`
	Signature        crypto.Signature `json:"signature"`
}

// NewClientMessage signs the commitment leaf hash of vd with key and wraps
// both into a submission message.
func NewClientMessage(vd VerificationData, key *ecdsa.PrivateKey) (ClientMessage, error) {
	sig, err := crypto.SignDigest(vd.Commitment().LeafHash(), key)
	if err != nil {
		return ClientMessage{}, fmt.Errorf("types: signing client message: %w", err)
	}
	return ClientMessage{VerificationData: vd, Signature: sig}, nil
}

// VerifySignature recomputes the commitment leaf hash, recovers the signer
// address and checks the signature against it. A failure marks the message
// as untrusted input; it is a normal outcome and never panics.
func (m *ClientMessage) VerifySignature() (common.Address, error) {
	return crypto.RecoverAddress(m.VerificationData.Commitment().LeafHash(), m.Signature)
}

// BatchInclusionData is what the batching service returns for one accepted
// submission once its batch tree is built: the batch root, the sibling
// path of the submission's leaf, and the leaf's 0-based position.
type BatchInclusionData struct {
	BatchMerkleRoot     common.Hash  `json:"batch_merkle_root"`
	BatchInclusionProof merkle.Proof `json:"batch_inclusion_proof"`
	IndexInBatch        uint64       `json:"index_in_batch"`
}

// NewBatchInclusionData extracts root, proof and index for the leaf at
// index from a built batch tree.
func NewBatchInclusionData(index int, tree *merkle.Tree[VerificationDataCommitment]) (BatchInclusionData, error) {
	proof, err := tree.GetProofByPos(index)
	if err != nil {
		return BatchInclusionData{}, err
	}
	return BatchInclusionData{
		BatchMerkleRoot:     tree.Root(),
		BatchInclusionProof: proof,
		IndexInBatch:        uint64(index),
	}, nil
}

// AlignedVerificationData joins a submission's commitment with the
// inclusion data received for it. It is the unit persisted to disk and
// replayed later for the on-chain inclusion check.
type AlignedVerificationData struct {
	VerificationDataCommitment VerificationDataCommitment `json:"verification_data_commitment"`
	BatchMerkleRoot            common.Hash                `json:"batch_merkle_root"`
	BatchInclusionProof        merkle.Proof               `json:"batch_inclusion_proof"`
	IndexInBatch               uint64                     `json:"index_in_batch"`
}

// NewAlignedVerificationData joins a commitment with its inclusion data.
func NewAlignedVerificationData(c VerificationDataCommitment, bid BatchInclusionData) AlignedVerificationData {
	return AlignedVerificationData{
		VerificationDataCommitment: c,
		BatchMerkleRoot:            bid.BatchMerkleRoot,
		BatchInclusionProof:        bid.BatchInclusionProof,
		IndexInBatch:               bid.IndexInBatch,
	}
}

// FileName is the canonical artifact file name: the first 8 hex characters
// of the batch root, an underscore, and the batch index.
func (a *AlignedVerificationData) FileName() string {
	return fmt.Sprintf("%s_%d.json", a.BatchMerkleRoot.Hex()[2:10], a.IndexInBatch)
}
