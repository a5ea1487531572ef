// Package chainio performs the read-only on-chain inclusion check against
// the batch service-manager contract. It assembles the call arguments
// byte-identically to the contract's expected layout; the Merkle check
// itself is delegated to the chain as the source of truth.
package chainio

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/zkbatch/zkbatch/types"
)

// serviceManagerABI covers the single read-only entry point this client
// needs. Argument order and types must match the deployed contract exactly.
const serviceManagerABI = `[{"type":"function","name":"verifyBatchInclusion","stateMutability":"view","inputs":[{"name":"proofCommitment","type":"bytes32"},{"name":"pubInputCommitment","type":"bytes32"},{"name":"provingSystemAuxDataCommitment","type":"bytes32"},{"name":"proofGeneratorAddr","type":"bytes20"},{"name":"batchMerkleRoot","type":"bytes32"},{"name":"merkleProof","type":"bytes"},{"name":"verificationDataBatchIndex","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}]`

// Network selects which deployment of the service manager to talk to.
type Network string

const (
	Devnet  Network = "devnet"
	Holesky Network = "holesky"
)

// Deployed service-manager addresses per network.
var serviceManagerAddrs = map[Network]common.Address{
	Devnet:  common.HexToAddress("0x1613beB3B2C4f22Ee086B2b38C1476A3cE7f78E8"),
	Holesky: common.HexToAddress("0x58F280BeBE9B34c9939C3C39e0890C81f163B623"),
}

// ParseNetwork maps a CLI network name to its Network value.
func ParseNetwork(name string) (Network, error) {
	n := Network(strings.ToLower(name))
	if _, ok := serviceManagerAddrs[n]; !ok {
		return "", fmt.Errorf("chainio: unknown network %q, available networks are: [devnet, holesky]", name)
	}
	return n, nil
}

// ServiceManagerAddress returns the deployed contract address for the
// network.
func (n Network) ServiceManagerAddress() common.Address {
	return serviceManagerAddrs[n]
}

// ServiceManager is a caller-side binding of the batch service-manager
// contract.
type ServiceManager struct {
	addr     common.Address
	contract *bind.BoundContract
}

// NewServiceManager binds the contract at addr over any contract caller
// (an ethclient.Client, or a simulated backend in tests).
func NewServiceManager(caller bind.ContractCaller, addr common.Address) (*ServiceManager, error) {
	parsed, err := abi.JSON(strings.NewReader(serviceManagerABI))
	if err != nil {
		return nil, fmt.Errorf("chainio: parsing service manager ABI: %w", err)
	}
	return &ServiceManager{
		addr:     addr,
		contract: bind.NewBoundContract(addr, parsed, caller, nil, nil),
	}, nil
}

// DialServiceManager connects to the JSON-RPC endpoint and binds the
// network's deployed service manager.
func DialServiceManager(ctx context.Context, rpcURL string, network Network) (*ServiceManager, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("chainio: dialing %s: %w", rpcURL, err)
	}
	return NewServiceManager(client, network.ServiceManagerAddress())
}

// Address returns the bound contract address.
func (m *ServiceManager) Address() common.Address {
	return m.addr
}

// VerifyBatchInclusion asks the contract whether the anchored root for
// this batch contains the record's leaf at its claimed index. The sibling
// path is flattened into one byte sequence in path order; commitment
// fields are passed in contract declaration order.
func (m *ServiceManager) VerifyBatchInclusion(ctx context.Context, aligned *types.AlignedVerificationData) (bool, error) {
	c := aligned.VerificationDataCommitment

	var out []interface{}
	err := m.contract.Call(&bind.CallOpts{Context: ctx}, &out, "verifyBatchInclusion",
		[32]byte(c.ProofCommitment),
		[32]byte(c.PubInputCommitment),
		[32]byte(c.ProvingSystemAuxDataCommitment),
		[20]byte(c.ProofGeneratorAddr),
		[32]byte(aligned.BatchMerkleRoot),
		aligned.BatchInclusionProof.Flatten(),
		new(big.Int).SetUint64(aligned.IndexInBatch),
	)
	if err != nil {
		return false, fmt.Errorf("chainio: verifyBatchInclusion call: %w", err)
	}
	if len(out) != 1 {
		return false, errors.New("chainio: unexpected verifyBatchInclusion output")
	}
	included, ok := out[0].(bool)
	if !ok {
		return false, errors.New("chainio: verifyBatchInclusion returned a non-bool")
	}
	return included, nil
}
