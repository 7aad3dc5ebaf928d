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

package node

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/engboniface/stellar-core/config"
	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/data/basics"
	"github.com/engboniface/stellar-core/data/transactions"
	"github.com/engboniface/stellar-core/logging"
	"github.com/engboniface/stellar-core/network"
	"github.com/engboniface/stellar-core/testpartitioning"
)

func nodeTestConfig(t *testing.T) (config.Local, *crypto.SignatureSecrets, *crypto.SignatureSecrets) {
	t.Helper()

	var seed crypto.Seed
	seed[0] = 0x11
	validator := crypto.GenerateSignatureSecrets(seed)

	var userSeed crypto.Seed
	userSeed[0] = 0x22
	user := crypto.GenerateSignatureSecrets(userSeed)

	cfg := config.DefaultLocal()
	cfg.ValidationSeed = hex.EncodeToString(seed[:])
	cfg.StartNewNetwork = true
	cfg.QuorumThreshold = 0
	cfg.DesiredBaseFee = 10
	cfg.GenesisCloseTime = 1000
	cfg.GenesisBalances = map[string]int64{
		user.SignatureVerifier.String(): 100000,
	}
	return cfg, validator, user
}

func TestNodeBootstrapMintsFirstLedger(t *testing.T) {
	testpartitioning.PartitionTest(t)

	cfg, _, user := nodeTestConfig(t)
	n, err := MakeFullNode(cfg, logging.TestingLog(t))
	require.NoError(t, err)
	require.NoError(t, n.Start())
	defer n.Stop()

	require.NoError(t, n.Bootstrap())
	status := n.Status()
	require.Equal(t, basics.LedgerSeq(1), status.LastClosedLedgerSeq)
	require.Equal(t, uint32(0), status.SyncWaitRemaining)

	// A locally submitted transaction is accepted and shows up in the
	// set the queue assembles.
	tx := transactions.Transaction{
		Header: transactions.Header{
			Source: basics.AccountID(user.SignatureVerifier),
			Fee:    10,
			SeqNum: 1,
		},
		Destination: basics.AccountID(user.SignatureVerifier),
		Amount:      50,
	}.Sign(user)
	require.Error(t, n.SubmitTransaction(network.Message{}))
	require.NoError(t, n.SubmitTransaction(network.MakeTxMessage(tx)))

	queued := n.Status()
	require.Equal(t, 1, queued.QueuedTransactions)
	require.NotEqual(t, status.PendingTxSetHash, queued.PendingTxSetHash)
}

func TestNodeRejectsBadSeed(t *testing.T) {
	testpartitioning.PartitionTest(t)

	cfg, _, _ := nodeTestConfig(t)
	cfg.ValidationSeed = "nope"
	_, err := MakeFullNode(cfg, logging.TestingLog(t))
	require.Error(t, err)
}
