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

// Package metrics registers the node's prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TransactionsReceived counts transactions newly accepted into the
	// received buckets.
	TransactionsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stellar_herder_transactions_received_total",
		Help: "Transactions newly accepted into the received buckets",
	})

	// TransactionsRejected counts transactions refused at admission.
	TransactionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stellar_herder_transactions_rejected_total",
		Help: "Transactions refused at admission",
	})

	// LedgersClosed counts externalized slots applied to the ledger.
	LedgersClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stellar_ledger_closed_total",
		Help: "Externalized slots applied to the ledger",
	})

	// EnvelopesDropped counts agreement envelopes discarded by the slot
	// validity window.
	EnvelopesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stellar_herder_envelopes_dropped_total",
		Help: "Agreement envelopes discarded by the slot validity window",
	})

	// EnvelopesBuffered counts agreement envelopes held for a future slot.
	EnvelopesBuffered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stellar_herder_envelopes_buffered_total",
		Help: "Agreement envelopes held for a future slot",
	})

	// FetchRequests counts content-addressed fetch requests sent to the
	// overlay, labeled by artifact kind.
	FetchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stellar_fetcher_requests_total",
		Help: "Content-addressed fetch requests sent to the overlay",
	}, []string{"kind"})

	// TxQueueSizeByAge tracks the number of queued transactions per age
	// cohort in the transaction queue.
	TxQueueSizeByAge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stellar_txqueue_size_by_age",
		Help: "Queued transactions per age cohort",
	}, []string{"age"})
)

// Handler returns an http.Handler exposing the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
