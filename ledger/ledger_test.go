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

package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/engboniface/stellar-core/config"
	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/data/basics"
	"github.com/engboniface/stellar-core/data/bookkeeping"
	"github.com/engboniface/stellar-core/data/transactions"
	"github.com/engboniface/stellar-core/logging"
	"github.com/engboniface/stellar-core/testpartitioning"
)

type recordingListener struct {
	headers []bookkeeping.LedgerHeader
	txSets  []*bookkeeping.TxSetFrame
}

func (l *recordingListener) LedgerClosed(header bookkeeping.LedgerHeader, txSet *bookkeeping.TxSetFrame) {
	l.headers = append(l.headers, header)
	l.txSets = append(l.txSets, txSet)
}

func ledgerAccount(b byte) (*crypto.SignatureSecrets, basics.AccountID) {
	var seed crypto.Seed
	seed[0] = b
	secrets := crypto.GenerateSignatureSecrets(seed)
	return secrets, basics.AccountID(secrets.SignatureVerifier)
}

func makeTestLedger(t *testing.T, balances map[string]int64) *Ledger {
	t.Helper()
	cfg := config.DefaultLocal()
	cfg.DesiredBaseFee = 10
	cfg.GenesisCloseTime = 1000
	cfg.GenesisBalances = balances
	l, err := MakeLedger(cfg, logging.TestingLog(t))
	require.NoError(t, err)
	return l
}

func TestLedgerGenesis(t *testing.T) {
	testpartitioning.PartitionTest(t)

	_, alice := ledgerAccount(1)
	l := makeTestLedger(t, map[string]int64{alice.String(): 5000})

	header := l.LastClosedLedgerHeader()
	require.Equal(t, basics.LedgerSeq(0), header.LedgerSeq)
	require.Equal(t, uint64(1000), header.CloseTime)
	require.Equal(t, header.ComputeHash(), header.Hash)

	acct, ok := l.LookupAccount(alice)
	require.True(t, ok)
	require.Equal(t, basics.Stroops(5000), acct.Balance)
	require.Equal(t, basics.Stroops(10), l.TxFee())
}

func TestLedgerBadGenesisAccount(t *testing.T) {
	testpartitioning.PartitionTest(t)

	cfg := config.DefaultLocal()
	cfg.GenesisBalances = map[string]int64{"zz": 1}
	_, err := MakeLedger(cfg, logging.TestingLog(t))
	require.Error(t, err)
}

func TestLedgerExternalizeApplies(t *testing.T) {
	testpartitioning.PartitionTest(t)

	aliceSec, alice := ledgerAccount(1)
	_, bob := ledgerAccount(2)
	l := makeTestLedger(t, map[string]int64{alice.String(): 5000})
	listener := &recordingListener{}
	l.SetCloseListener(listener)
	genesis := l.LastClosedLedgerHeader()

	payment := transactions.Transaction{
		Header:      transactions.Header{Source: alice, Fee: 10, SeqNum: 1},
		Destination: bob,
		Amount:      100,
	}.Sign(aliceSec)

	txSet := &bookkeeping.TxSetFrame{PreviousLedgerHash: genesis.Hash}
	txSet.Add(payment)
	l.ExternalizeValue(txSet, 1200, 10)

	header := l.LastClosedLedgerHeader()
	require.Equal(t, basics.LedgerSeq(1), header.LedgerSeq)
	require.Equal(t, genesis.Hash, header.PrevHash)
	require.Equal(t, txSet.ContentsHash(), header.TxSetHash)
	require.Equal(t, uint64(1200), header.CloseTime)

	aliceData, _ := l.LookupAccount(alice)
	require.Equal(t, basics.Stroops(4890), aliceData.Balance)
	require.Equal(t, basics.SeqNum(1), aliceData.SeqNum)
	bobData, _ := l.LookupAccount(bob)
	require.Equal(t, basics.Stroops(100), bobData.Balance)

	require.Len(t, listener.headers, 1)
	require.Equal(t, header, listener.headers[0])
	require.Equal(t, txSet, listener.txSets[0])
}

func TestLedgerSkipsStaleTransactions(t *testing.T) {
	testpartitioning.PartitionTest(t)

	aliceSec, alice := ledgerAccount(1)
	_, bob := ledgerAccount(2)
	l := makeTestLedger(t, map[string]int64{alice.String(): 200})
	genesis := l.LastClosedLedgerHeader()

	good := transactions.Transaction{
		Header:      transactions.Header{Source: alice, Fee: 10, SeqNum: 1},
		Destination: bob,
		Amount:      100,
	}.Sign(aliceSec)
	// Same sequence number twice: the second no longer applies.
	replay := transactions.Transaction{
		Header:      transactions.Header{Source: alice, Fee: 10, SeqNum: 1},
		Destination: bob,
		Amount:      50,
	}.Sign(aliceSec)
	// Overdraft once the first payment and fees settle.
	overdraft := transactions.Transaction{
		Header:      transactions.Header{Source: alice, Fee: 10, SeqNum: 2},
		Destination: bob,
		Amount:      1000,
	}.Sign(aliceSec)

	txSet := &bookkeeping.TxSetFrame{PreviousLedgerHash: genesis.Hash}
	txSet.Add(good)
	txSet.Add(replay)
	txSet.Add(overdraft)
	l.ExternalizeValue(txSet, 1200, 10)

	aliceData, _ := l.LookupAccount(alice)
	require.Equal(t, basics.Stroops(90), aliceData.Balance)
	require.Equal(t, basics.SeqNum(1), aliceData.SeqNum)
	bobData, _ := l.LookupAccount(bob)
	require.Equal(t, basics.Stroops(100), bobData.Balance)

	// The ledger still closes.
	require.Equal(t, basics.LedgerSeq(1), l.LastClosedLedgerHeader().LedgerSeq)
}
