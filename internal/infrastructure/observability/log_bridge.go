package observability

import (
	"time"

	"github.com/rs/zerolog"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

// otelHook copies every zerolog event into an OpenTelemetry log record. The
// event's Go context, when set, carries the span for trace correlation.
type otelHook struct {
	provider otellog.LoggerProvider
}

// newOTelHook creates a hook. A nil provider resolves the global provider on
// each event, so records flow once Setup installs an exporter.
func newOTelHook(provider otellog.LoggerProvider) zerolog.Hook {
	return otelHook{provider: provider}
}

func (h otelHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if level == zerolog.Disabled {
		return
	}

	provider := h.provider
	if provider == nil {
		provider = global.GetLoggerProvider()
	}

	var record otellog.Record
	record.SetTimestamp(time.Now())
	record.SetSeverity(severityFor(level))
	record.SetSeverityText(level.String())
	record.SetBody(otellog.StringValue(msg))

	provider.Logger(instrumentationName).Emit(e.GetCtx(), record)
}

func severityFor(level zerolog.Level) otellog.Severity {
	switch level {
	case zerolog.TraceLevel:
		return otellog.SeverityTrace
	case zerolog.DebugLevel:
		return otellog.SeverityDebug
	case zerolog.InfoLevel:
		return otellog.SeverityInfo
	case zerolog.WarnLevel:
		return otellog.SeverityWarn
	case zerolog.ErrorLevel:
		return otellog.SeverityError
	case zerolog.FatalLevel:
		return otellog.SeverityFatal
	case zerolog.PanicLevel:
		return otellog.SeverityFatal4
	default:
		return otellog.SeverityUndefined
	}
}
