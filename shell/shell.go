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

// Package shell is the reference host for the wallet core. It executes
// capability requests against real local implementations and feeds results
// back over the bridge boundary. Mobile or desktop hosts replace this package;
// the capability contract is the same.
package shell

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/nuts-foundation/go-stoabs"

	"github.com/wallet-foundation/wallet-node/bridge"
	"github.com/wallet-foundation/wallet-node/capability"
	"github.com/wallet-foundation/wallet-node/shell/log"
	"github.com/wallet-foundation/wallet-node/wallet"
)

// Config tunes the reference shell.
type Config struct {
	// Locale selects the display locale used when rendering views.
	Locale string `koanf:"locale"`
}

// DefaultConfig returns the default shell configuration.
func DefaultConfig() Config {
	return Config{Locale: wallet.DefaultLocale}
}

// Shell executes capability requests for one core. Each request runs on its
// own goroutine; ordering guarantees live in the core, not here.
type Shell struct {
	core     *bridge.Core
	config   Config
	store    storeHandler
	keyStore *keyStoreHandler
	http     httpHandler
	onRender func(view []byte)

	ctx      context.Context
	cancel   context.CancelFunc
	inFlight sync.WaitGroup
}

// New builds a shell over the given core and KV store. onRender is invoked
// with the serialized display model after every render request; pass nil to
// ignore renders.
func New(core *bridge.Core, db stoabs.KVStore, onRender func(view []byte)) *Shell {
	return NewWithConfig(core, db, onRender, DefaultConfig(), nil)
}

// NewWithConfig is New with explicit configuration and HTTP client.
func NewWithConfig(core *bridge.Core, db stoabs.KVStore, onRender func(view []byte), config Config, client *http.Client) *Shell {
	if onRender == nil {
		onRender = func([]byte) {}
	}
	if config.Locale == "" {
		config.Locale = wallet.DefaultLocale
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Shell{
		core:     core,
		config:   config,
		store:    storeHandler{db: db},
		keyStore: newKeyStoreHandler(),
		http:     newHTTPHandler(client),
		onRender: onRender,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ProcessEvent feeds one event through the core and executes the requested
// effects. It returns once the event is applied; effects settle asynchronously
// (see WaitIdle).
func (s *Shell) ProcessEvent(event wallet.Event) error {
	data, err := wallet.EncodeEvent(event)
	if err != nil {
		return err
	}
	requests, err := s.core.ProcessEvent(data)
	if err != nil {
		return err
	}
	s.deliver(requests)
	return nil
}

// WaitIdle blocks until every dispatched request, including follow-ups, has
// settled.
func (s *Shell) WaitIdle() {
	s.inFlight.Wait()
}

// Shutdown stops in-flight HTTP exchanges and waits for outstanding requests
// to settle.
func (s *Shell) Shutdown() {
	s.cancel()
	s.inFlight.Wait()
}

func (s *Shell) deliver(requests []capability.Request) {
	for _, request := range requests {
		request := request
		s.inFlight.Add(1)
		go func() {
			defer s.inFlight.Done()
			s.execute(request)
		}()
	}
}

func (s *Shell) execute(request capability.Request) {
	var result any
	switch request.Capability {
	case capability.Store:
		result = s.store.execute(s.ctx, request.Operation)
	case capability.KeyStore:
		result = s.keyStore.execute(request.Operation)
	case capability.HTTP:
		result = s.http.execute(s.ctx, request.Operation)
	case capability.Render:
		s.render()
		return
	default:
		log.Logger().Errorf("request %d names unknown capability: %s", request.ID, request.Capability)
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		log.Logger().WithError(err).Errorf("unable to marshal result for request %d", request.ID)
		return
	}
	followUps, err := s.core.HandleResponse(request.ID, data)
	if err != nil {
		log.Logger().WithError(err).Errorf("core rejected result for request %d", request.ID)
	}
	s.deliver(followUps)
}

func (s *Shell) render() {
	view, err := s.core.View(s.config.Locale)
	if err != nil {
		log.Logger().WithError(err).Error("unable to render view")
		return
	}
	s.onRender(view)
}
