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

package capability

import "net/http"

// HTTPOperation asks the shell to perform one HTTP exchange. The core treats
// the transport as opaque; timeouts, TLS and retries are shell concerns.
type HTTPOperation struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body,omitempty"`
}

// GetOperation builds a GET exchange.
func GetOperation(url string) HTTPOperation {
	return HTTPOperation{Method: http.MethodGet, URL: url}
}

// PostOperation builds a POST exchange with a body and content type.
func PostOperation(url, contentType string, body []byte) HTTPOperation {
	return HTTPOperation{
		Method:  http.MethodPost,
		URL:     url,
		Headers: map[string]string{"Content-Type": contentType},
		Body:    body,
	}
}

// WithHeader returns a copy of the operation with an extra header set.
func (o HTTPOperation) WithHeader(name, value string) HTTPOperation {
	headers := map[string]string{}
	for k, v := range o.Headers {
		headers[k] = v
	}
	headers[name] = value
	o.Headers = headers
	return o
}

// HTTPResponse is the success variant of an HTTP result. Protocol-level
// failures (non-2xx) are still successes at the capability level; interpreting
// the status is up to the caller.
type HTTPResponse struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body,omitempty"`
}

// ContentType returns the Content-Type header, if any.
func (r HTTPResponse) ContentType() string {
	return r.Headers["Content-Type"]
}

// HTTPResult is the outcome of an HTTP operation: exactly one of Ok and Err is set.
type HTTPResult struct {
	Ok  *HTTPResponse `json:"ok,omitempty"`
	Err *Error        `json:"err,omitempty"`
}

// OkHTTPResult wraps a response in a result.
func OkHTTPResult(response HTTPResponse) HTTPResult {
	return HTTPResult{Ok: &response}
}

// ErrHTTPResult wraps an error in a result.
func ErrHTTPResult(err *Error) HTTPResult {
	return HTTPResult{Err: err}
}

// IntoResponse unwraps the result.
func (r HTTPResult) IntoResponse() (*HTTPResponse, error) {
	if r.Err != nil {
		return nil, *r.Err
	}
	if r.Ok == nil {
		return nil, *InvalidResponseError("http result carries neither response nor error")
	}
	return r.Ok, nil
}
