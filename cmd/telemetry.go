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

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cardinalhq/oteltools/pkg/telemetry"
	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/instrumentation/host"
	iruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/cardinalhq/lakeagg/internal/helpers"
	"github.com/cardinalhq/lakeagg/internal/idgen"
)

var myInstanceID int64

// otlpEnabled reports whether logs and metrics should also be exported.
func otlpEnabled() bool {
	return os.Getenv("OTEL_SERVICE_NAME") != "" && helpers.GetBoolEnv("ENABLE_OTLP_TELEMETRY", false)
}

// logLevel is DEBUG when DEBUG or LAKEAGG_DEBUG is truthy.
func logLevel() slog.Level {
	if helpers.AnyBoolEnv("DEBUG", "LAKEAGG_DEBUG") {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// setupTelemetry installs the default slog logger and, when enabled, the
// OpenTelemetry SDK. Logs go to stderr; stdout carries reports. The
// returned context is cancelled on SIGINT or SIGTERM, and the returned
// function flushes telemetry and releases the signal handler.
func setupTelemetry(servicename string) (context.Context, func() error, error) {
	myInstanceID = idgen.DefaultFlakeGenerator.NextID()

	doneCtx, doneCancel := handleSignals(context.Background())

	f := func() error {
		doneCancel()
		return nil
	}

	opts := &slog.HandlerOptions{Level: logLevel()}

	if !otlpEnabled() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)).With(
			slog.String("service", servicename),
		))
		return doneCtx, f, nil
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(
		slog.NewTextHandler(os.Stderr, opts),
		otelslog.NewHandler(servicename),
	)).With(
		slog.String("service", servicename),
		slog.Int64("instanceID", myInstanceID),
	))
	slog.Debug("OpenTelemetry exporting enabled")

	otelShutdown, err := telemetry.SetupOTelSDK(doneCtx)
	if err != nil {
		doneCancel()
		return doneCtx, nil, fmt.Errorf("failed to setup OpenTelemetry SDK: %w", err)
	}

	if err := iruntime.Start(iruntime.WithMinimumReadMemStatsInterval(time.Second * 10)); err != nil {
		slog.Warn("failed to start runtime metrics", "error", err.Error())
	}

	if err := host.Start(); err != nil {
		slog.Warn("failed to start host metrics", "error", err.Error())
	}

	f = func() error {
		defer doneCancel()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return otelShutdown(ctx)
	}

	return doneCtx, f, nil
}
