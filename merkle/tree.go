// Package merkle implements the binary Merkle tree used to aggregate batch
// commitments. The leaf and parent hash functions are supplied by a Backend,
// so the tree itself is independent of any particular leaf schema.
//
// Odd node counts are handled by padding the leaf level to the next power of
// two with a copy of the last leaf hash. The resulting tree is complete:
// every inclusion proof has exactly depth siblings, and build and
// verification sides agree without special cases.
package merkle

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// Errors for tree construction and proof generation.
var (
	ErrNoLeaves        = errors.New("merkle: tree needs at least one leaf")
	ErrIndexOutOfRange = errors.New("merkle: leaf index out of range")
)

// Backend supplies the two hash functions a tree is built from. HashData
// reduces a leaf value to a 32-byte node; HashParent combines two child
// nodes. Implementations must be deterministic.
type Backend[D any] interface {
	HashData(leaf D) common.Hash
	HashParent(left, right common.Hash) common.Hash
}

// Tree is an array-backed binary Merkle tree over an ordered leaf sequence.
// It is immutable after construction.
type Tree[D any] struct {
	backend   Backend[D]
	leafCount int
	// levels[0] holds the padded leaf hashes; each following level halves
	// in size; the last level is the single root node.
	levels [][]common.Hash
}

// NewTree builds a tree over the given leaves in insertion order.
func NewTree[D any](backend Backend[D], leaves []D) (*Tree[D], error) {
	if len(leaves) == 0 {
		return nil, ErrNoLeaves
	}

	hashes := make([]common.Hash, len(leaves))
	for i, leaf := range leaves {
		hashes[i] = backend.HashData(leaf)
	}

	// Pad to the next power of two by repeating the last leaf hash.
	size := 1
	for size < len(hashes) {
		size *= 2
	}
	for len(hashes) < size {
		hashes = append(hashes, hashes[len(hashes)-1])
	}

	levels := [][]common.Hash{hashes}
	for len(hashes) > 1 {
		parents := make([]common.Hash, len(hashes)/2)
		for i := 0; i < len(parents); i++ {
			parents[i] = backend.HashParent(hashes[2*i], hashes[2*i+1])
		}
		levels = append(levels, parents)
		hashes = parents
	}

	return &Tree[D]{
		backend:   backend,
		leafCount: len(leaves),
		levels:    levels,
	}, nil
}

// Root returns the 32-byte tree root.
func (t *Tree[D]) Root() common.Hash {
	return t.levels[len(t.levels)-1][0]
}

// LeafCount returns the number of leaves the tree was built from,
// excluding padding.
func (t *Tree[D]) LeafCount() int {
	return t.leafCount
}

// Depth returns the number of levels below the root. A single-leaf tree
// has depth 0 and empty proofs.
func (t *Tree[D]) Depth() int {
	return len(t.levels) - 1
}

// GetProofByPos returns the sibling path from leaf pos up to the root.
// pos is the 0-based insertion index; padding leaves have no proofs.
func (t *Tree[D]) GetProofByPos(pos int) (Proof, error) {
	if pos < 0 || pos >= t.leafCount {
		return Proof{}, ErrIndexOutOfRange
	}

	path := make([]common.Hash, 0, t.Depth())
	idx := pos
	for level := 0; level < t.Depth(); level++ {
		path = append(path, t.levels[level][idx^1])
		idx >>= 1
	}
	return Proof{MerklePath: path}, nil
}

// VerifyProof recomputes the root from a leaf, its index and a sibling
// path, and reports whether it matches root. The index's bit pattern
// selects left/right ordering at each level, so the check agrees
// bit-for-bit with the on-chain verifier.
func VerifyProof[D any](backend Backend[D], root common.Hash, leaf D, index int, proof Proof) bool {
	if index < 0 || index >= 1<<len(proof.MerklePath) {
		return false
	}

	node := backend.HashData(leaf)
	idx := index
	for _, sibling := range proof.MerklePath {
		if idx&1 == 0 {
			node = backend.HashParent(node, sibling)
		} else {
			node = backend.HashParent(sibling, node)
		}
		idx >>= 1
	}
	return node == root
}
