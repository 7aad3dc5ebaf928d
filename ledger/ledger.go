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

// Package ledger holds the node's view of closed ledgers: the account
// table, the chained headers, and the application of externalized
// transaction sets.
package ledger

import (
	"fmt"

	"github.com/algorand/go-deadlock"

	"github.com/engboniface/stellar-core/config"
	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/data/basics"
	"github.com/engboniface/stellar-core/data/bookkeeping"
	"github.com/engboniface/stellar-core/data/transactions"
	"github.com/engboniface/stellar-core/logging"
)

// CloseListener is notified synchronously with the header and applied
// transaction set of every ledger this manager closes.
type CloseListener interface {
	LedgerClosed(bookkeeping.LedgerHeader, *bookkeeping.TxSetFrame)
}

// Ledger is an in-memory ledger manager: a genesis-seeded account table
// advanced by externalized transaction sets.
type Ledger struct {
	mu deadlock.Mutex

	log      logging.Logger
	lcl      bookkeeping.LedgerHeader
	accounts map[basics.AccountID]basics.AccountData
	listener CloseListener
}

// MakeLedger builds the genesis ledger from the configured balances and
// close time. The genesis header carries sequence zero, so slot one is
// the first up for consensus.
func MakeLedger(cfg config.Local, log logging.Logger) (*Ledger, error) {
	accounts := make(map[basics.AccountID]basics.AccountData)
	for str, balance := range cfg.GenesisBalances {
		pk, err := crypto.PublicKeyFromString(str)
		if err != nil {
			return nil, fmt.Errorf("ledger: bad genesis account %s: %w", str, err)
		}
		accounts[basics.AccountID(pk)] = basics.AccountData{Balance: basics.Stroops(balance)}
	}

	header := bookkeeping.LedgerHeader{
		LedgerSeq: 0,
		CloseTime: cfg.GenesisCloseTime,
		BaseFee:   cfg.DesiredBaseFee,
	}.WithHash()

	return &Ledger{
		log:      log,
		lcl:      header,
		accounts: accounts,
	}, nil
}

// SetCloseListener installs the listener notified on every close. It must
// be set before the first ExternalizeValue.
func (l *Ledger) SetCloseListener(listener CloseListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listener = listener
}

// LastClosedLedgerHeader returns the header of the last closed ledger.
func (l *Ledger) LastClosedLedgerHeader() bookkeeping.LedgerHeader {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lcl
}

// LookupAccount returns the current state of an account.
func (l *Ledger) LookupAccount(id basics.AccountID) (basics.AccountData, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	data, ok := l.accounts[id]
	return data, ok
}

// TxFee returns the per-transaction fee of the current ledger.
func (l *Ledger) TxFee() basics.Stroops {
	l.mu.Lock()
	defer l.mu.Unlock()
	return basics.Stroops(l.lcl.BaseFee)
}

// ExternalizeValue applies a committed transaction set, closing the next
// ledger with the decided close time and base fee, and notifies the close
// listener with the new header. Transactions that no longer apply are
// skipped.
func (l *Ledger) ExternalizeValue(txSet *bookkeeping.TxSetFrame, closeTime uint64, baseFee uint64) {
	l.mu.Lock()

	applied := 0
	for _, stx := range txSet.Transactions {
		if err := l.applyTransaction(stx); err != nil {
			l.log.WithFields(logging.Fields{
				"txid": stx.ID().String(),
				"err":  err,
			}).Warn("ledger: skipping transaction")
			continue
		}
		applied++
	}

	header := bookkeeping.LedgerHeader{
		LedgerSeq: l.lcl.LedgerSeq + 1,
		PrevHash:  l.lcl.Hash,
		TxSetHash: txSet.ContentsHash(),
		CloseTime: closeTime,
		BaseFee:   baseFee,
	}.WithHash()
	l.lcl = header
	listener := l.listener

	l.log.WithFields(logging.Fields{
		"seq":     uint64(header.LedgerSeq),
		"applied": applied,
		"txs":     len(txSet.Transactions),
	}).Info("ledger: closed")

	l.mu.Unlock()

	if listener != nil {
		listener.LedgerClosed(header, txSet)
	}
}

// applyTransaction debits the source for fee and amount, credits the
// destination, and advances the source's sequence number. Called with the
// ledger lock held.
func (l *Ledger) applyTransaction(stx transactions.SignedTx) error {
	fee := basics.Stroops(l.lcl.BaseFee)
	if stx.Txn.Fee < fee {
		return fmt.Errorf("fee %d below ledger fee %d", stx.Txn.Fee, fee)
	}
	source, ok := l.accounts[stx.Txn.Source]
	if !ok {
		return fmt.Errorf("source account %s not found", stx.Txn.Source.Short())
	}
	if stx.Txn.SeqNum != source.SeqNum+1 {
		return fmt.Errorf("seqnum %d, account at %d", stx.Txn.SeqNum, source.SeqNum)
	}
	total := stx.Txn.Fee + stx.Txn.Amount
	if source.Balance < total {
		return fmt.Errorf("balance %d below %d", source.Balance, total)
	}

	source.Balance -= total
	source.SeqNum = stx.Txn.SeqNum
	l.accounts[stx.Txn.Source] = source

	dest := l.accounts[stx.Txn.Destination]
	dest.Balance += stx.Txn.Amount
	l.accounts[stx.Txn.Destination] = dest
	return nil
}
