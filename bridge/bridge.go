/*
 * Copyright (C) 2025 Wallet Foundation community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

// Package bridge serializes access to the wallet core and correlates
// capability requests with their results. It is the only place where a
// request ID exists: the update loop hands continuations to the bridge, the
// shell hands results back by ID.
package bridge

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wallet-foundation/wallet-node/bridge/log"
	"github.com/wallet-foundation/wallet-node/capability"
	"github.com/wallet-foundation/wallet-node/wallet"
)

// Core owns the model and the continuation table. All three boundary
// operations lock the same mutex, so updates are strictly serialized and
// Update is never called re-entrantly.
type Core struct {
	mu      sync.Mutex
	model   *wallet.Model
	caps    *wallet.Capabilities
	nextID  uint32
	pending map[uint32]func(json.RawMessage) wallet.Event
	batch   []capability.Request
	metrics coreMetrics
}

type coreMetrics struct {
	events    prometheus.Counter
	requests  prometheus.Counter
	results   prometheus.Counter
	unmatched prometheus.Counter
}

func newCoreMetrics() coreMetrics {
	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wallet",
			Subsystem: "bridge",
			Name:      name,
			Help:      help,
		})
		err := prometheus.Register(c)
		if err != nil && err.Error() != (prometheus.AlreadyRegisteredError{}).Error() { // No unwrap on prometheus.AlreadyRegisteredError
			log.Logger().WithError(err).Warnf("unable to register %s counter", name)
		}
		return c
	}
	return coreMetrics{
		events:    counter("events_total", "Number of events processed by the update loop"),
		requests:  counter("requests_total", "Number of capability requests dispatched to the shell"),
		results:   counter("results_total", "Number of capability results delivered to a continuation"),
		unmatched: counter("unmatched_results_total", "Number of capability results without an outstanding request (duplicate or superseded)"),
	}
}

// New builds a core with an empty model.
func New() *Core {
	core := &Core{
		model:   wallet.NewModel(),
		pending: map[uint32]func(json.RawMessage) wallet.Event{},
		metrics: newCoreMetrics(),
	}
	core.caps = wallet.NewCapabilities(core)
	return core
}

var (
	instance *Core
	initOnce sync.Once
)

// Instance returns the process-wide core, building it on first use. Shells
// embedding the core over a serialized boundary cannot pass a handle around,
// so the boundary operations address this singleton.
func Instance() *Core {
	initOnce.Do(func() {
		instance = New()
	})
	return instance
}

// Request implements wallet.Requester. It is called from within Update while
// the core lock is held: it only assigns an ID, parks the continuation and
// queues the request for the caller of the boundary operation to dispatch.
func (c *Core) Request(capabilityName string, operation json.RawMessage, continuation func(json.RawMessage) wallet.Event) {
	c.nextID++
	id := c.nextID
	if continuation != nil {
		c.pending[id] = continuation
	}
	c.batch = append(c.batch, capability.Request{ID: id, Capability: capabilityName, Operation: operation})
	c.metrics.requests.Inc()
}

// ProcessEvent decodes and applies one shell event. It returns the capability
// requests the update requested, in dispatch order; the shell must execute
// each and deliver exactly one result per request via HandleResponse.
func (c *Core) ProcessEvent(data []byte) ([]capability.Request, error) {
	event, err := wallet.DecodeEvent(data)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(event), nil
}

// HandleResponse delivers the result for an outstanding request. The
// continuation is consumed before it runs, so a second result for the same ID
// finds no outstanding request and is rejected.
func (c *Core) HandleResponse(id uint32, result []byte) ([]capability.Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	continuation, ok := c.pending[id]
	if !ok {
		c.metrics.unmatched.Inc()
		return c.drain(), fmt.Errorf("no outstanding request with id %d", id)
	}
	delete(c.pending, id)
	c.metrics.results.Inc()
	// the continuation may itself queue requests (chained effects) even when
	// it produces no follow-up event
	if event := continuation(result); event != nil {
		return c.apply(event), nil
	}
	return c.drain(), nil
}

// View renders the current display model for the given locale.
func (c *Core) View(locale string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return json.Marshal(wallet.Project(c.model, locale))
}

func (c *Core) apply(event wallet.Event) []capability.Request {
	wallet.Update(event, c.model, c.caps)
	c.metrics.events.Inc()
	return c.drain()
}

func (c *Core) drain() []capability.Request {
	batch := c.batch
	c.batch = nil
	return batch
}
