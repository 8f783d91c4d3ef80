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

package core

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// NewStatusEngine creates a new Engine that exposes the server status and the list of registered engines.
func NewStatusEngine(system *System) Engine {
	return &statusEngine{system: system}
}

type statusEngine struct {
	system *System
}

func (s *statusEngine) Name() string {
	return "Status"
}

func (s *statusEngine) Routes(router EchoRouter) {
	router.GET("/status", statusOK)
	router.GET("/status/engines", s.listEngines)
}

func (s *statusEngine) listEngines(ctx echo.Context) error {
	var names []string
	s.system.VisitEngines(func(engine Engine) {
		if named, ok := engine.(Named); ok {
			names = append(names, named.Name())
		}
	})
	return ctx.String(http.StatusOK, strings.Join(names, ","))
}

// statusOK returns 200 OK with a "OK" body
func statusOK(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "OK")
}
