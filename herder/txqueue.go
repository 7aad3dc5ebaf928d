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

package herder

import (
	"strconv"

	"github.com/algorand/go-deadlock"

	"github.com/engboniface/stellar-core/data/basics"
	"github.com/engboniface/stellar-core/data/bookkeeping"
	"github.com/engboniface/stellar-core/data/transactions"
	"github.com/engboniface/stellar-core/logging"
	"github.com/engboniface/stellar-core/util/metrics"
)

// FeeMultiplier is the minimum ratio of a replacement transaction's fee to
// the replaced one's when both carry the same sequence number; a bid of
// exactly this multiple replaces.
const FeeMultiplier = basics.Stroops(10)

// ledgerCapacityTxs is the nominal per-ledger transaction capacity used
// to size the queue.
const ledgerCapacityTxs = 1000

// AddResult is the verdict of TransactionQueue.TryAdd.
type AddResult int

// TryAdd verdicts.
const (
	TxAddPending AddResult = iota
	TxAddDuplicate
	TxAddError
	TxAddTryAgainLater
)

func (r AddResult) String() string {
	switch r {
	case TxAddPending:
		return "PENDING"
	case TxAddDuplicate:
		return "DUPLICATE"
	case TxAddError:
		return "ERROR"
	case TxAddTryAgainLater:
		return "TRY_AGAIN_LATER"
	default:
		return "UNKNOWN"
	}
}

// AccountTxQueueInfo describes one account's pending queue: the highest
// queued sequence number, the fees it has bid, the queue size, and how
// many ledgers the queue has aged.
type AccountTxQueueInfo struct {
	MaxSeq    basics.SeqNum
	TotalFees basics.Stroops
	QueueSize int
	Age       int
}

// accountTxs is one account's FIFO of pending transactions, ordered by
// increasing sequence number, with its cached total fees and age.
type accountTxs struct {
	totalFees basics.Stroops
	age       int
	txs       []transactions.SignedTx
}

// TransactionQueue keeps received transactions that are valid but not yet
// included in a ledger. Each account has a queue with an age; Shift is
// called on every ledger close, banning queues that reach the pending
// depth and unbanning transactions banned long enough.
type TransactionQueue struct {
	mu deadlock.Mutex

	ledger       bookkeeping.LedgerState
	log          logging.Logger
	pendingDepth int

	pending map[basics.AccountID]*accountTxs

	// banned is a deque of banDepth generations of banned hashes;
	// banned[0] is the most recent.
	banned []map[transactions.Txid]bool

	queueSize    int
	maxQueueSize int
}

// MakeTransactionQueue builds a queue banning transactions after
// pendingDepth ledgers, keeping them banned for banDepth ledgers, and
// holding at most poolLedgerMultiplier ledgers' worth of transactions.
func MakeTransactionQueue(ledger bookkeeping.LedgerState, pendingDepth, banDepth, poolLedgerMultiplier int, log logging.Logger) *TransactionQueue {
	if banDepth < 1 {
		banDepth = 1
	}
	banned := make([]map[transactions.Txid]bool, banDepth)
	for i := range banned {
		banned[i] = make(map[transactions.Txid]bool)
	}
	return &TransactionQueue{
		ledger:       ledger,
		log:          log,
		pendingDepth: pendingDepth,
		pending:      make(map[basics.AccountID]*accountTxs),
		banned:       banned,
		maxQueueSize: poolLedgerMultiplier * ledgerCapacityTxs,
	}
}

// TryAdd offers a transaction to the queue.
func (q *TransactionQueue) TryAdd(stx transactions.SignedTx) AddResult {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := stx.ID()
	if q.isBanned(id) {
		return TxAddTryAgainLater
	}

	account := q.pending[stx.Txn.Source]
	replaceIdx := -1
	if account != nil {
		for i, old := range account.txs {
			if old.ID() == id {
				return TxAddDuplicate
			}
			if old.Txn.SeqNum == stx.Txn.SeqNum {
				// Same sequence number: only a much better fee bid may
				// replace the queued transaction.
				if stx.Txn.Fee < old.Txn.Fee*FeeMultiplier {
					return TxAddError
				}
				replaceIdx = i
			}
		}
	}

	if q.queueSize >= q.maxQueueSize && replaceIdx < 0 {
		return TxAddTryAgainLater
	}

	acct, ok := q.ledger.LookupAccount(stx.Txn.Source)
	if !ok {
		return TxAddError
	}
	if stx.Txn.SeqNum < acct.SeqNum+1 {
		return TxAddError
	}
	lastSeq := acct.SeqNum
	totalFees := basics.Stroops(0)
	if account != nil {
		totalFees = account.totalFees
		if n := len(account.txs); n > 0 {
			lastSeq = account.txs[n-1].Txn.SeqNum
		}
	}
	if replaceIdx < 0 && stx.Txn.SeqNum != lastSeq+1 {
		// Sequence gaps never become valid; the queue holds contiguous
		// runs only.
		return TxAddError
	}
	if stx.WellFormed(q.ledger.TxFee()) != nil {
		return TxAddError
	}
	if acct.Balance < totalFees+stx.Txn.Fee {
		return TxAddError
	}

	if account == nil {
		account = &accountTxs{}
		q.pending[stx.Txn.Source] = account
	}
	if replaceIdx >= 0 {
		account.totalFees -= account.txs[replaceIdx].Txn.Fee
		account.txs[replaceIdx] = stx
	} else {
		account.txs = append(account.txs, stx)
		q.queueSize++
	}
	account.totalFees += stx.Txn.Fee
	q.updateSizeMetrics()
	return TxAddPending
}

// RemoveAndReset removes transactions that made it into a ledger,
// preserving the rest of each affected account's queue and resetting its
// age.
func (q *TransactionQueue) RemoveAndReset(txs []transactions.SignedTx) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, stx := range txs {
		account := q.pending[stx.Txn.Source]
		if account == nil {
			continue
		}
		account.age = 0
		id := stx.ID()
		for i, old := range account.txs {
			if old.ID() == id {
				account.totalFees -= old.Txn.Fee
				account.txs = append(account.txs[:i], account.txs[i+1:]...)
				q.queueSize--
				break
			}
		}
		if len(account.txs) == 0 {
			delete(q.pending, stx.Txn.Source)
		}
	}
	q.updateSizeMetrics()
}

// Ban bans the given transactions and, for any of them still queued,
// their queued descendants (higher sequence numbers on the same account).
func (q *TransactionQueue) Ban(txs []transactions.SignedTx) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, stx := range txs {
		q.banned[0][stx.ID()] = true
		account := q.pending[stx.Txn.Source]
		if account == nil {
			continue
		}
		id := stx.ID()
		for i, old := range account.txs {
			if old.ID() != id {
				continue
			}
			// Descendants depend on this transaction's sequence number;
			// ban and drop them with it.
			dropped := account.txs[i:]
			for _, d := range dropped {
				q.banned[0][d.ID()] = true
				account.totalFees -= d.Txn.Fee
			}
			account.txs = account.txs[:i]
			q.queueSize -= len(dropped)
			break
		}
		if len(account.txs) == 0 {
			delete(q.pending, stx.Txn.Source)
		}
	}
	q.updateSizeMetrics()
}

// Shift ages every account queue by one ledger. Queues reaching the
// pending depth are banned wholesale; the oldest banned generation is
// unbanned.
func (q *TransactionQueue) Shift() {
	q.mu.Lock()
	defer q.mu.Unlock()

	last := len(q.banned) - 1
	copy(q.banned[1:], q.banned[:last])
	q.banned[0] = make(map[transactions.Txid]bool)

	for source, account := range q.pending {
		account.age++
		if account.age < q.pendingDepth {
			continue
		}
		for _, stx := range account.txs {
			q.banned[0][stx.ID()] = true
		}
		q.queueSize -= len(account.txs)
		delete(q.pending, source)
	}
	q.updateSizeMetrics()
}

// AccountTxQueueInfo reports the queue state for one account.
func (q *TransactionQueue) AccountTxQueueInfo(id basics.AccountID) AccountTxQueueInfo {
	q.mu.Lock()
	defer q.mu.Unlock()
	var info AccountTxQueueInfo
	account := q.pending[id]
	if account == nil {
		return info
	}
	info.TotalFees = account.totalFees
	info.QueueSize = len(account.txs)
	info.Age = account.age
	if n := len(account.txs); n > 0 {
		info.MaxSeq = account.txs[n-1].Txn.SeqNum
	}
	return info
}

// IsBanned reports whether the transaction with the given hash is
// currently banned.
func (q *TransactionQueue) IsBanned(id transactions.Txid) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.isBanned(id)
}

func (q *TransactionQueue) isBanned(id transactions.Txid) bool {
	for _, generation := range q.banned {
		if generation[id] {
			return true
		}
	}
	return false
}

// CountBanned returns the number of transactions in banned generation
// index.
func (q *TransactionQueue) CountBanned(index int) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if index < 0 || index >= len(q.banned) {
		return 0
	}
	return len(q.banned[index])
}

// Size returns the total number of queued transactions.
func (q *TransactionQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queueSize
}

// ToTxSet assembles a transaction set from every queued transaction,
// stamped against the given last closed ledger.
func (q *TransactionQueue) ToTxSet(lcl bookkeeping.LedgerHeader) *bookkeeping.TxSetFrame {
	q.mu.Lock()
	defer q.mu.Unlock()
	frame := &bookkeeping.TxSetFrame{PreviousLedgerHash: lcl.Hash}
	for _, account := range q.pending {
		frame.Transactions = append(frame.Transactions, account.txs...)
	}
	return frame
}

func (q *TransactionQueue) updateSizeMetrics() {
	byAge := make(map[int]int)
	for _, account := range q.pending {
		byAge[account.age] += len(account.txs)
	}
	for age := 0; age < q.pendingDepth; age++ {
		metrics.TxQueueSizeByAge.WithLabelValues(strconv.Itoa(age)).Set(float64(byAge[age]))
	}
}
