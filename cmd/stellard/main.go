// Copyright (C) 2025 Engboniface, Inc.
// This file is part of stellar-core
//
// stellar-core is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// stellar-core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with stellar-core.  If not, see <https://www.gnu.org/licenses/>.

// stellard is the validator daemon: it loads the node configuration from
// a data directory and runs consensus until interrupted.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/engboniface/stellar-core/config"
	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/logging"
	"github.com/engboniface/stellar-core/node"
)

var version = "0.1.0"

var dataDir string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "stellard",
	Short:         "stellard runs a stellar-core validator",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", ".", "data directory holding "+config.ConfigFilename)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(genSeedCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadNode() (*node.StellarFullNode, config.Local, error) {
	cfg, err := config.LoadConfigFromDisk(dataDir)
	if err != nil {
		return nil, cfg, fmt.Errorf("loading config: %w", err)
	}
	log := logging.Base()
	log.SetLevel(logging.Level(cfg.LogLevel))
	n, err := node.MakeFullNode(cfg, log)
	if err != nil {
		return nil, cfg, err
	}
	return n, cfg, nil
}

func runUntilSignalled(n *node.StellarFullNode) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	n.Stop()
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Join an existing network and run the validator",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _, err := loadNode()
		if err != nil {
			return err
		}
		if err := n.Start(); err != nil {
			return err
		}
		runUntilSignalled(n)
		return nil
	},
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Start a new network from this node's genesis ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, cfg, err := loadNode()
		if err != nil {
			return err
		}
		if !cfg.StartNewNetwork {
			return fmt.Errorf("bootstrap requires StartNewNetwork in %s", config.ConfigFilename)
		}
		if err := n.Start(); err != nil {
			return err
		}
		if err := n.Bootstrap(); err != nil {
			n.Stop()
			return err
		}
		runUntilSignalled(n)
		return nil
	},
}

var genSeedCmd = &cobra.Command{
	Use:   "genseed",
	Short: "Generate a validation seed and print it with its public key",
	RunE: func(cmd *cobra.Command, args []string) error {
		var seed crypto.Seed
		crypto.RandomSeed(&seed)
		secrets := crypto.GenerateSignatureSecrets(seed)
		fmt.Printf("ValidationSeed: %x\n", seed[:])
		fmt.Printf("PublicKey:      %s\n", secrets.SignatureVerifier.String())
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the stellard version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}
