package merkle

import "github.com/ethereum/go-ethereum/common"

// Proof is the sibling path for one leaf, ordered from the leaf level up
// to the level below the root. Generating a proof does not mutate the tree.
type Proof struct {
	MerklePath []common.Hash `json:"merkle_path"`
}

// Flatten concatenates the sibling digests in path order. This is the byte
// layout the on-chain verifier consumes.
func (p Proof) Flatten() []byte {
	out := make([]byte, 0, len(p.MerklePath)*common.HashLength)
	for _, h := range p.MerklePath {
		out = append(out, h.Bytes()...)
	}
	return out
}
