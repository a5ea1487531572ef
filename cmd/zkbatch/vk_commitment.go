package main

import (
	"encoding/hex"
	"os"

	"github.com/spf13/cobra"

	"github.com/zkbatch/zkbatch/batcher"
	"github.com/zkbatch/zkbatch/crypto"
)

var vkCommitmentFlags struct {
	inputPath  string
	outputPath string
}

var vkCommitmentCmd = &cobra.Command{
	Use:   "get-vk-commitment",
	Short: "Compute the keccak-256 commitment of a verification key file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVkCommitment()
	},
}

func init() {
	f := vkCommitmentCmd.Flags()
	f.StringVar(&vkCommitmentFlags.inputPath, "input", "", "input file path")
	f.StringVar(&vkCommitmentFlags.outputPath, "output", "", "optional output file for the hex commitment")
	cobra.CheckErr(vkCommitmentCmd.MarkFlagRequired("input"))

	rootCmd.AddCommand(vkCommitmentCmd)
}

func runVkCommitment() error {
	content, err := readFile(vkCommitmentFlags.inputPath)
	if err != nil {
		return err
	}

	commitment := hex.EncodeToString(crypto.Keccak256(content))
	log.Info().Str("commitment", commitment).Msg("computed commitment")

	if vkCommitmentFlags.outputPath != "" {
		if err := os.WriteFile(vkCommitmentFlags.outputPath, []byte(commitment), 0o644); err != nil {
			return &batcher.FileError{Path: vkCommitmentFlags.outputPath, Err: err}
		}
	}
	return nil
}
