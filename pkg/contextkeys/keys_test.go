package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetUserID(ctx))

	ctx = WithUserID(WithRequestID(ctx, "0190b7a2-7d3c-7f00-8000-000000000001"), "42")
	assert.Equal(t, "0190b7a2-7d3c-7f00-8000-000000000001", GetRequestID(ctx))
	assert.Equal(t, "42", GetUserID(ctx))
}

type foreignKey string

func TestKeysDoNotCollideWithOtherTypes(t *testing.T) {
	ctx := context.WithValue(context.Background(), foreignKey("request_id"), "foreign value")
	assert.Empty(t, GetRequestID(ctx))

	ctx = WithLogger(WithIdentity(ctx, 7), "logger")
	assert.Equal(t, 7, ctx.Value(IdentityKey))
	assert.Equal(t, "logger", ctx.Value(LoggerKey))
}
