package observability

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/logging"
	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap/zapcore"
)

const logInstrumentation = "fantasy-cycling/internal/platform/logging"

// logFilter reports whether an entry should stay out of the exported
// log stream.
type logFilter func(msg string, args []any) bool

// logExporter copies logger entries to the global OTLP log provider.
type logExporter struct {
	logger  otellog.Logger
	filters []logFilter
	now     func() time.Time
}

func newUptraceLogMirror(serviceVersion string) logging.MirrorFunc {
	exp := &logExporter{
		logger:  otelglobal.Logger(logInstrumentation, otellog.WithInstrumentationVersion(serviceVersion)),
		filters: []logFilter{idleSchedulerTick},
		now:     time.Now,
	}
	return exp.emit
}

func (e *logExporter) emit(ctx context.Context, level logging.Level, msg string, args ...any) {
	for _, skip := range e.filters {
		if skip(msg, args) {
			return
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	severity := severityOf(level)
	if !e.logger.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: msg}) {
		return
	}

	now := e.now().UTC()
	var record otellog.Record
	record.SetTimestamp(now)
	record.SetObservedTimestamp(now)
	record.SetSeverity(severity)
	record.SetSeverityText(strings.ToUpper(level.String()))
	record.SetEventName(msg)
	record.SetBody(otellog.StringValue(msg))
	if attrs := logAttributes(args); len(attrs) > 0 {
		record.AddAttributes(attrs...)
	}
	e.logger.Emit(ctx, record)
}

// idleSchedulerTick matches scheduler ticks that locked, settled and
// failed nothing. The worker logs one every interval.
func idleSchedulerTick(msg string, args []any) bool {
	if msg != "scheduler tick finished" {
		return false
	}
	for i := 0; i+1 < len(args); i += 2 {
		switch args[i] {
		case "locked_races", "settled_races", "failed":
			if n, ok := args[i+1].(int); !ok || n != 0 {
				return false
			}
		}
	}
	return true
}

// logAttributes pairs key/value args. A dangling key becomes an empty
// attribute and a non-string key is named by its position.
func logAttributes(args []any) []otellog.KeyValue {
	if len(args) == 0 {
		return nil
	}
	out := make([]otellog.KeyValue, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, _ := args[i].(string)
		if strings.TrimSpace(key) == "" {
			key = fmt.Sprintf("arg_%d", i/2)
		}
		if i+1 == len(args) {
			out = append(out, otellog.Empty(key))
			break
		}
		out = append(out, otellog.KeyValue{Key: key, Value: logValue(args[i+1])})
	}
	return out
}

func severityOf(level zapcore.Level) otellog.Severity {
	switch {
	case level <= zapcore.DebugLevel:
		return otellog.SeverityDebug
	case level == zapcore.InfoLevel:
		return otellog.SeverityInfo
	case level == zapcore.WarnLevel:
		return otellog.SeverityWarn
	case level == zapcore.ErrorLevel:
		return otellog.SeverityError
	default:
		return otellog.SeverityFatal
	}
}

// logValue maps scalars onto OTLP types. Slices of strings stay slices and
// any other composite value is exported as its JSON text.
func logValue(value any) otellog.Value {
	switch v := value.(type) {
	case nil:
		return otellog.Value{}
	case string:
		return otellog.StringValue(v)
	case bool:
		return otellog.BoolValue(v)
	case int:
		return otellog.IntValue(v)
	case int32:
		return otellog.Int64Value(int64(v))
	case int64:
		return otellog.Int64Value(v)
	case uint64:
		if v > math.MaxInt64 {
			return otellog.StringValue(fmt.Sprint(v))
		}
		return otellog.Int64Value(int64(v))
	case float64:
		return otellog.Float64Value(v)
	case time.Time:
		return otellog.StringValue(v.UTC().Format(time.RFC3339Nano))
	case time.Duration:
		return otellog.StringValue(v.String())
	case error:
		return otellog.StringValue(v.Error())
	case fmt.Stringer:
		return otellog.StringValue(v.String())
	case []string:
		items := make([]otellog.Value, 0, len(v))
		for _, item := range v {
			items = append(items, otellog.StringValue(item))
		}
		return otellog.SliceValue(items...)
	}

	raw, err := sonic.ConfigStd.Marshal(value)
	if err != nil {
		return otellog.StringValue(fmt.Sprint(value))
	}
	return otellog.StringValue(string(raw))
}
