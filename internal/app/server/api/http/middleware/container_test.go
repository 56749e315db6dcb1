package middleware

import (
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
)

func TestContainer_GetAllAndClear(t *testing.T) {
	c := NewContainer()
	noop := func(ctx huma.Context, next func(huma.Context)) { next(ctx) }

	c.Add(noop, noop)
	first := c.GetAllAndClear()
	assert.Len(t, first, 2)

	second := c.GetAllAndClear()
	assert.NotNil(t, second)
	assert.Empty(t, second)

	c.Add(noop)
	assert.Len(t, c.GetAllAndClear(), 1)
	assert.Len(t, first, 2)
}
