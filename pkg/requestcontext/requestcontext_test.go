package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestContextValues(t *testing.T) {
	t.Run("empty context returns zero values", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, RequestID(ctx))
		assert.Empty(t, ClientIP(ctx))
		assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
	})

	t.Run("stored values round trip", func(t *testing.T) {
		pinned := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		ctx := WithRequestID(context.Background(), "req-1")
		ctx = WithClientIP(ctx, "10.0.0.7")
		ctx = WithTime(ctx, pinned)

		assert.Equal(t, "req-1", RequestID(ctx))
		assert.Equal(t, "10.0.0.7", ClientIP(ctx))
		assert.Equal(t, pinned, Now(ctx))
	})
}
