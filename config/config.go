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

// Package config defines the node's local configuration and the protocol
// constants that all nodes of a network must share.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/engboniface/stellar-core/crypto"
)

// ConfigFilename is the name of the JSON file where we store per-node
// settings.
const ConfigFilename = "stellard.json"

// NumReceivedBuckets is the number of age cohorts a received transaction
// passes through before it must be included by nominators.
const NumReceivedBuckets = 4

// SyncWaitLedgers is the number of ledgers a freshly started node observes
// before participating in consensus.
const SyncWaitLedgers = 3

// Local holds the per-node configuration settings for the running node.
type Local struct {
	// Version tracks the current version of the config file schema.
	Version uint32

	// NetAddress is the address the gossip listener binds to; empty
	// disables the listener.
	NetAddress string

	// GossipPeers are the addresses of peers to dial on startup.
	GossipPeers []string

	// MetricsAddress is the address the prometheus endpoint binds to;
	// empty disables it.
	MetricsAddress string

	// LogLevel is the maximum emitted level (0=panic .. 5=debug).
	LogLevel uint32

	// ValidationSeed is the hex-encoded ed25519 seed of this node's
	// signing identity.
	ValidationSeed string

	// QuorumThreshold is the number of quorum-set members that must agree.
	QuorumThreshold uint32

	// QuorumSet lists the hex-encoded public keys of the validators this
	// node trusts.
	QuorumSet []string

	// DesiredBaseFee is the per-transaction fee this node nominates; peers
	// outside [0.5x, 2x] of it are rejected.
	DesiredBaseFee uint64

	// StartNewNetwork must be true for bootstrap to mint slot 1 without
	// waiting to sync.
	StartNewNetwork bool

	// MaxTimeSlipSeconds bounds how far in the future a ballot's close
	// time may lie.
	MaxTimeSlipSeconds uint32

	// MaxFBATimeoutSeconds caps each term of the ballot-counter timeout
	// series.
	MaxFBATimeoutSeconds uint32

	// ExpectedLedgerTimespanSeconds is the minimum spacing between
	// successive nomination triggers.
	ExpectedLedgerTimespanSeconds uint32

	// LedgerValidityBracket is the symmetric envelope slot window around
	// the last closed ledger.
	LedgerValidityBracket uint32

	// TxPendingDepth is the number of ledgers a queued transaction may age
	// before it is banned.
	TxPendingDepth int

	// TxBanDepth is the number of ledgers a banned transaction stays
	// banned.
	TxBanDepth int

	// TxPoolLedgerMultiplier bounds the transaction queue to this many
	// ledgers' worth of transactions.
	TxPoolLedgerMultiplier int

	// GenesisBalances maps hex-encoded account public keys to their
	// balance in the genesis ledger.
	GenesisBalances map[string]int64

	// GenesisCloseTime is the close time stamped on the genesis ledger.
	GenesisCloseTime uint64
}

var defaultLocal = Local{
	Version:                       1,
	LogLevel:                      4,
	DesiredBaseFee:                10,
	MaxTimeSlipSeconds:            60,
	MaxFBATimeoutSeconds:          240,
	ExpectedLedgerTimespanSeconds: 5,
	LedgerValidityBracket:         10,
	TxPendingDepth:                4,
	TxBanDepth:                    10,
	TxPoolLedgerMultiplier:        2,
}

// DefaultLocal returns a copy of the default Local config.
func DefaultLocal() Local {
	return defaultLocal
}

// LoadConfigFromDisk loads the Local config from rootDir, merging
// stellard.json over the defaults. A missing file yields the defaults.
func LoadConfigFromDisk(rootDir string) (c Local, err error) {
	c = defaultLocal
	configFile := filepath.Join(rootDir, ConfigFilename)
	f, err := os.Open(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return
	}
	defer f.Close()
	err = loadConfig(f, &c)
	return
}

func loadConfig(reader io.Reader, config *Local) error {
	dec := json.NewDecoder(reader)
	return dec.Decode(config)
}

// SaveToDisk writes the Local config to rootDir/stellard.json.
func (cfg Local) SaveToDisk(rootDir string) error {
	configFile := filepath.Join(rootDir, ConfigFilename)
	return cfg.SaveToFile(configFile)
}

// SaveToFile saves the config to a specific filename, allowing overriding
// the default name.
func (cfg Local) SaveToFile(filename string) error {
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "\t")
	return enc.Encode(cfg)
}

// ValidationSecrets derives this node's signing identity from the
// configured seed.
func (cfg Local) ValidationSecrets() (*crypto.SignatureSecrets, error) {
	if cfg.ValidationSeed == "" {
		return nil, errors.New("config: ValidationSeed is not set")
	}
	seed, err := crypto.SeedFromString(cfg.ValidationSeed)
	if err != nil {
		return nil, fmt.Errorf("config: bad ValidationSeed: %w", err)
	}
	return crypto.GenerateSignatureSecrets(seed), nil
}

// QuorumValidators decodes the configured quorum-set member keys.
func (cfg Local) QuorumValidators() ([]crypto.PublicKey, error) {
	validators := make([]crypto.PublicKey, 0, len(cfg.QuorumSet))
	for _, str := range cfg.QuorumSet {
		pk, err := crypto.PublicKeyFromString(str)
		if err != nil {
			return nil, fmt.Errorf("config: bad quorum set entry %s: %w", str, err)
		}
		validators = append(validators, pk)
	}
	return validators, nil
}
