// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package debugging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"

	"github.com/cardinalhq/lakeagg/internal/helpers"
)

// PprofPortEnv names the variable holding the pprof listen port. Profiling
// is off unless it is set to a positive port.
const PprofPortEnv = "LAKEAGG_PPROF_PORT"

// RunPprof serves net/http/pprof until ctx is done. It is a no-op when
// profiling is disabled.
func RunPprof(ctx context.Context) {
	port := pprofPort()
	if port <= 0 {
		return
	}

	addr := fmt.Sprintf("localhost:%d", port)
	server := &http.Server{Addr: addr}

	go func() {
		slog.Info("Starting pprof server", slog.String("address", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Pprof server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down pprof server", slog.Any("error", err))
		}
	}()
}

func pprofPort() int {
	port, ok := helpers.GetIntEnv(PprofPortEnv, 0)
	if !ok && !helpers.GetBoolEnv(PprofPortEnv, false) {
		return 0
	}
	if !ok {
		slog.Warn("Invalid pprof port, profiling disabled", slog.String("env", PprofPortEnv))
		return 0
	}
	return port
}
