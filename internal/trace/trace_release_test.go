//go:build !dev

package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReleaseStubs(t *testing.T) {
	ctx := context.Background()

	cleanup := Init()
	defer cleanup()

	Region(ctx, "generator.script")()
	Log(ctx, "scheduler", "stale completion")

	called := false
	WithRegion(ctx, "generator.custom", func() { called = true })

	assert.True(t, called)
	assert.False(t, IsEnabled())
}
