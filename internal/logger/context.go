package logger

import (
	"context"

	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

type ctxKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(ctxKey{}).(string)
	return v
}

// FromCtx returns the global logger tagged with the request id and the
// caller's identity when the context carries them.
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()

	fields := make([]zap.Field, 0, 3)
	if reqID := RequestIDFrom(ctx); reqID != "" {
		fields = append(fields, zap.String("request_id", reqID))
	}
	if userID, ok := utils.GetUserIDFromContext(ctx); ok {
		fields = append(fields, zap.String("user_id", userID.String()))
		if role := utils.GetUserRoleFromContext(ctx); role != "" {
			fields = append(fields, zap.String("role", role))
		}
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
