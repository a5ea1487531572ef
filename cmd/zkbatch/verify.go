package main

import (
	"github.com/spf13/cobra"

	"github.com/zkbatch/zkbatch/batcher"
	"github.com/zkbatch/zkbatch/chainio"
)

var verifyFlags struct {
	alignedDataPath string
	rpcURL          string
	chain           string
}

var verifyCmd = &cobra.Command{
	Use:   "verify-onchain",
	Short: "Verify that a persisted submission was included in an anchored batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify(cmd)
	},
}

func init() {
	f := verifyCmd.Flags()
	f.StringVar(&verifyFlags.alignedDataPath, "aligned-verification-data", "", "path to a persisted aligned verification data file")
	f.StringVar(&verifyFlags.rpcURL, "rpc", "http://localhost:8545", "Ethereum RPC endpoint")
	f.StringVar(&verifyFlags.chain, "chain", string(chainio.Devnet), "network name (devnet, holesky)")
	cobra.CheckErr(verifyCmd.MarkFlagRequired("aligned-verification-data"))

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command) error {
	network, err := chainio.ParseNetwork(verifyFlags.chain)
	if err != nil {
		return err
	}

	aligned, err := batcher.LoadAlignedVerificationData(verifyFlags.alignedDataPath)
	if err != nil {
		return err
	}

	manager, err := chainio.DialServiceManager(cmd.Context(), verifyFlags.rpcURL, network)
	if err != nil {
		return err
	}

	included, err := manager.VerifyBatchInclusion(cmd.Context(), aligned)
	if err != nil {
		return err
	}

	if included {
		log.Info().
			Stringer("root", aligned.BatchMerkleRoot).
			Uint64("index", aligned.IndexInBatch).
			Msg("proof was verified and included in the batch")
	} else {
		log.Info().
			Stringer("root", aligned.BatchMerkleRoot).
			Uint64("index", aligned.IndexInBatch).
			Msg("proof was not included in the batch")
	}
	return nil
}
