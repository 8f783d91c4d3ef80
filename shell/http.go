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

package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/wallet-foundation/wallet-node/capability"
	"github.com/wallet-foundation/wallet-node/shell/log"
)

const httpAttempts = 3
const httpRetryDelay = 100 * time.Millisecond

// httpHandler executes HTTP operations on a net/http client. Transport
// failures are retried with backoff; protocol-level failures (any status code)
// are returned to the core untouched.
type httpHandler struct {
	client *http.Client
}

func newHTTPHandler(client *http.Client) httpHandler {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return httpHandler{client: client}
}

func (h httpHandler) execute(ctx context.Context, operation json.RawMessage) capability.HTTPResult {
	op := capability.HTTPOperation{}
	if err := json.Unmarshal(operation, &op); err != nil {
		return capability.ErrHTTPResult(capability.InvalidRequestError("unable to unmarshal http operation: %s", err))
	}
	if op.Method == "" || op.URL == "" {
		return capability.ErrHTTPResult(capability.InvalidRequestError("http operation without method or url"))
	}
	var response capability.HTTPResponse
	err := retry.Do(func() error {
		request, err := http.NewRequestWithContext(ctx, op.Method, op.URL, bytes.NewReader(op.Body))
		if err != nil {
			return retry.Unrecoverable(err)
		}
		for name, value := range op.Headers {
			request.Header.Set(name, value)
		}
		httpResponse, err := h.client.Do(request)
		if err != nil {
			return err
		}
		defer httpResponse.Body.Close()
		body, err := io.ReadAll(httpResponse.Body)
		if err != nil {
			return err
		}
		headers := make(map[string]string, len(httpResponse.Header))
		for name := range httpResponse.Header {
			headers[name] = httpResponse.Header.Get(name)
		}
		response = capability.HTTPResponse{Status: httpResponse.StatusCode, Headers: headers, Body: body}
		return nil
	},
		retry.Attempts(httpAttempts),
		retry.Delay(httpRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Logger().WithError(err).Debugf("retrying %s %s (attempt %d)", op.Method, op.URL, n+1)
		}),
	)
	if err != nil {
		return capability.ErrHTTPResult(capability.UnavailableError("%s %s failed: %s", op.Method, op.URL, err))
	}
	return capability.OkHTTPResult(response)
}
