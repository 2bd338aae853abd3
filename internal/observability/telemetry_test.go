package observability

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/config"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/logging"
)

func TestStartTelemetry_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled:   false,
		PyroscopeEnabled: false,
		ServiceName:      "race-worker",
		ServiceVersion:   "dev",
		AppEnv:           config.EnvDev,
	}

	telemetry, err := StartTelemetry(cfg, logging.NewNop(), TelemetryOptions{Profiling: true})
	if err != nil {
		t.Fatalf("start telemetry: %v", err)
	}
	if telemetry.Tracing() {
		t.Fatalf("tracing should be off")
	}
	if err := telemetry.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown telemetry: %v", err)
	}
	if err := telemetry.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}

func TestStartTelemetry_TracingNeedsDSN(t *testing.T) {
	cfg := config.Config{UptraceEnabled: true, ServiceName: "race-worker"}

	telemetry, err := StartTelemetry(cfg, logging.NewNop(), TelemetryOptions{})
	if err != nil {
		t.Fatalf("start telemetry: %v", err)
	}
	if telemetry.Tracing() {
		t.Fatalf("tracing should stay off without a DSN")
	}
	if err := telemetry.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown telemetry: %v", err)
	}
}

func TestStartTelemetry_ProfilingNotRequested(t *testing.T) {
	cfg := config.Config{PyroscopeEnabled: true, PyroscopeServerAddress: "http://127.0.0.1:1"}

	telemetry, err := StartTelemetry(cfg, logging.NewNop(), TelemetryOptions{Profiling: false})
	if err != nil {
		t.Fatalf("start telemetry: %v", err)
	}
	if telemetry.profiler != nil {
		t.Fatalf("profiler should not start for short-lived commands")
	}
}

func TestProfilerConfig(t *testing.T) {
	cfg := config.Config{
		ServiceName:            "fantasy-cycling",
		ServiceVersion:         "1.2.3",
		AppEnv:                 config.EnvProd,
		PyroscopeServerAddress: "http://pyroscope:4040",
		PyroscopeUploadRate:    10 * time.Second,
	}

	got := profilerConfig(cfg)
	if got.ApplicationName != "fantasy-cycling" {
		t.Fatalf("application name should fall back to the service name, got %q", got.ApplicationName)
	}
	if got.Tags["version"] != "1.2.3" || got.Tags["env"] != config.EnvProd {
		t.Fatalf("unexpected tags: %+v", got.Tags)
	}
	if got.UploadRate != 10*time.Second {
		t.Fatalf("unexpected upload rate: %s", got.UploadRate)
	}
}

func TestTelemetry_NilIsNoop(t *testing.T) {
	var telemetry *Telemetry
	if telemetry.Tracing() {
		t.Fatalf("nil telemetry should not trace")
	}
	if err := telemetry.Shutdown(context.Background()); err != nil {
		t.Fatalf("nil shutdown: %v", err)
	}
}
