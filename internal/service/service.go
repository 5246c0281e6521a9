// Package service implements the influencer data access operations on top
// of the repositories, the blob store and the lookup cache.
package service

import (
	"context"
	"fmt"

	apperrors "influencer-platform/backend/pkg/errors"
	"influencer-platform/backend/pkg/logger"
	"influencer-platform/backend/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
)

// instrumentation gives each operation a span, metrics and one log line on
// failure.
type instrumentation struct {
	log *logger.Logger
	rec *observability.Recorder
}

func newInstrumentation(component string, log *logger.Logger, rec *observability.Recorder) instrumentation {
	if log == nil {
		log = logger.Nop()
	}
	if rec == nil {
		rec = observability.NopRecorder()
	}
	return instrumentation{log: log.With("component", component), rec: rec}
}

// start begins op. kv are key/value pairs attached to the span and to the
// failure log line. Call the returned func with a pointer to the named error
// result.
func (in instrumentation) start(ctx context.Context, op string, kv ...any) (context.Context, func(*error)) {
	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs = append(attrs, attribute.String(fmt.Sprint(kv[i]), fmt.Sprint(kv[i+1])))
	}
	ctx, done := in.rec.Start(ctx, op, attrs...)

	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		if err != nil {
			in.logFailure(op, err, kv...)
		}
		done(err)
	}
}

func (in instrumentation) logFailure(op string, err error, kv ...any) {
	appErr := apperrors.FromError(err)
	args := append([]any{
		"operation", op,
		"error_kind", string(appErr.Kind),
		"error_code", appErr.Code,
		"error", err.Error(),
	}, kv...)

	switch appErr.Kind {
	case apperrors.KindNotFound:
		in.log.Debug("operation found nothing", args...)
	case apperrors.KindValidationFailed, apperrors.KindConflict:
		in.log.Warn("operation rejected", args...)
	default:
		in.log.Error("operation failed", args...)
	}
}
