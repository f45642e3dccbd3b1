package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ProviderIDKey contextKey = "provider_id"

// GetProviderIDFromContext returns the authenticated provider, set by the
// owner auth middleware.
func GetProviderIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(ProviderIDKey)
	if val == nil {
		return uuid.Nil, false
	}

	idStr, ok := val.(string)
	if !ok {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

func SetProviderContext(ctx context.Context, providerID uuid.UUID) context.Context {
	return context.WithValue(ctx, ProviderIDKey, providerID.String())
}
