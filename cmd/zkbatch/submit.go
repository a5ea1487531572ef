package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/zkbatch/zkbatch/batcher"
	"github.com/zkbatch/zkbatch/types"
)

// Development defaults: anvil's first funded account.
const (
	defaultProofGeneratorAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	defaultPrivateKey         = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

var submitFlags struct {
	connectAddr         string
	provingSystem       string
	proofPath           string
	pubInputPath        string
	verificationKeyPath string
	vmProgramPath       string
	repetitions         int
	proofGeneratorAddr  string
	privateKey          string
	outputDir           string
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a proof to the batcher and persist its inclusion data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubmit(cmd)
	},
}

func init() {
	f := submitCmd.Flags()
	f.StringVar(&submitFlags.connectAddr, "conn", "ws://localhost:8080", "batcher websocket address")
	f.StringVar(&submitFlags.provingSystem, "proving_system", types.SP1.String(), "proving system of the proof")
	f.StringVar(&submitFlags.proofPath, "proof", "", "proof file path")
	f.StringVar(&submitFlags.pubInputPath, "public_input", "", "public input file path")
	f.StringVar(&submitFlags.verificationKeyPath, "vk", "", "verification key file path")
	f.StringVar(&submitFlags.vmProgramPath, "vm_program", "", "VM program code file path")
	f.IntVar(&submitFlags.repetitions, "repetitions", 1, "number of times to submit the proof")
	f.StringVar(&submitFlags.proofGeneratorAddr, "proof_generator_addr", defaultProofGeneratorAddr, "proof generator address")
	f.StringVar(&submitFlags.privateKey, "private_key", defaultPrivateKey, "hex private key used to sign submissions")
	f.StringVar(&submitFlags.outputDir, "aligned_verification_data_path", "./aligned_verification_data/", "directory for persisted inclusion data")
	cobra.CheckErr(submitCmd.MarkFlagRequired("proof"))

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command) error {
	vd, err := verificationDataFromFlags()
	if err != nil {
		return err
	}
	if err := vd.Validate(); err != nil {
		return err
	}

	if submitFlags.repetitions < 1 {
		return fmt.Errorf("repetitions must be at least 1, got %d", submitFlags.repetitions)
	}
	items := make([]types.VerificationData, submitFlags.repetitions)
	for i := range items {
		items[i] = *vd
	}

	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(submitFlags.privateKey, "0x"))
	if err != nil {
		return fmt.Errorf("parsing private key: %w", err)
	}

	if err := os.MkdirAll(submitFlags.outputDir, 0o755); err != nil {
		return &batcher.FileError{Path: submitFlags.outputDir, Err: err}
	}

	client, err := batcher.Dial(cmd.Context(), submitFlags.connectAddr, log)
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Submit(cmd.Context(), items, key)
	if err != nil {
		return err
	}

	for i := range result.Verified {
		path, err := batcher.SaveResponse(submitFlags.outputDir, &result.Verified[i])
		if err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("batch inclusion data written")
	}
	if len(result.Missing) > 0 {
		log.Warn().Int("missing", len(result.Missing)).
			Msg("some submissions received no batch inclusion data")
	}
	return nil
}

// verificationDataFromFlags assembles the submission from the CLI flags,
// reading only the auxiliary files the chosen proving system requires.
func verificationDataFromFlags() (*types.VerificationData, error) {
	system, err := types.ParseProvingSystem(submitFlags.provingSystem)
	if err != nil {
		return nil, err
	}

	proof, err := readFile(submitFlags.proofPath)
	if err != nil {
		return nil, err
	}

	vd := &types.VerificationData{
		ProvingSystem:      system,
		Proof:              proof,
		ProofGeneratorAddr: common.HexToAddress(submitFlags.proofGeneratorAddr),
	}

	switch system {
	case types.SP1:
		code, err := readFileOption("--vm_program", submitFlags.vmProgramPath)
		if err != nil {
			return nil, err
		}
		vd.VmProgramCode = code
	default:
		vk, err := readFileOption("--vk", submitFlags.verificationKeyPath)
		if err != nil {
			return nil, err
		}
		pubInput, err := readFileOption("--public_input", submitFlags.pubInputPath)
		if err != nil {
			return nil, err
		}
		vd.VerificationKey = vk
		vd.PubInput = pubInput
	}
	return vd, nil
}

func readFile(path string) (hexutil.Bytes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &batcher.FileError{Path: path, Err: err}
	}
	return data, nil
}

// readFileOption reads a file behind an optional flag, reporting the flag
// name when the chosen proving system requires it but it was not supplied.
func readFileOption(flagName, path string) (*hexutil.Bytes, error) {
	if path == "" {
		return nil, &types.MissingParameterError{Param: flagName}
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return &data, nil
}
