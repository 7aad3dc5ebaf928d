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

package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/testpartitioning"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	testpartitioning.PartitionTest(t)

	c, err := LoadConfigFromDisk(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, defaultLocal, c)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	testpartitioning.PartitionTest(t)

	c := defaultLocal
	err := loadConfig(strings.NewReader(`{"DesiredBaseFee": 100, "QuorumThreshold": 2}`), &c)
	require.NoError(t, err)
	require.Equal(t, uint64(100), c.DesiredBaseFee)
	require.Equal(t, uint32(2), c.QuorumThreshold)
	// untouched fields keep their defaults
	require.Equal(t, defaultLocal.ExpectedLedgerTimespanSeconds, c.ExpectedLedgerTimespanSeconds)
	require.Equal(t, defaultLocal.MaxTimeSlipSeconds, c.MaxTimeSlipSeconds)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	testpartitioning.PartitionTest(t)

	dir := t.TempDir()
	c := defaultLocal
	c.DesiredBaseFee = 55
	c.StartNewNetwork = true
	c.QuorumSet = []string{strings.Repeat("ab", 32)}
	require.NoError(t, c.SaveToDisk(dir))

	loaded, err := LoadConfigFromDisk(dir)
	require.NoError(t, err)
	require.Equal(t, c, loaded)
}

func TestValidationSecrets(t *testing.T) {
	testpartitioning.PartitionTest(t)

	var cfg Local
	_, err := cfg.ValidationSecrets()
	require.Error(t, err)

	var seed crypto.Seed
	crypto.RandomSeed(&seed)
	cfg.ValidationSeed = strings.Repeat("00", 32)
	secrets, err := cfg.ValidationSecrets()
	require.NoError(t, err)
	require.NotNil(t, secrets)

	cfg.ValidationSeed = "zz"
	_, err = cfg.ValidationSecrets()
	require.Error(t, err)
}

func TestQuorumValidators(t *testing.T) {
	testpartitioning.PartitionTest(t)

	var seed crypto.Seed
	seed[0] = 7
	pk := crypto.GenerateSignatureSecrets(seed).SignatureVerifier

	cfg := Local{QuorumSet: []string{pk.String()}}
	validators, err := cfg.QuorumValidators()
	require.NoError(t, err)
	require.Equal(t, []crypto.PublicKey{pk}, validators)

	cfg.QuorumSet = append(cfg.QuorumSet, "not-hex")
	_, err = cfg.QuorumValidators()
	require.Error(t, err)
}
