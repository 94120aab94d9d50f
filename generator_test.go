package taskengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityRedirect(t *testing.T) {
	target := NewNotified[int]()
	g := newIdentityRedirect(target)

	require.False(t, g.Done())
	r1 := g.Resume(nil)
	assert.True(t, r1.IsAwaiting())
	assert.False(t, g.Done())

	target.CompleteNotified(Ok(99))

	r2 := g.Resume(nil)
	assert.False(t, r2.IsAwaiting())
	assert.True(t, g.Done())
	assert.Equal(t, 99, r2.value.Value)
}

func TestChainProducesTransformedResult(t *testing.T) {
	eng := New(WithWorkers(2))
	defer eng.Close()

	src := Launch[int](eng, &constantGenerator{result: Ok(10)})

	doubled := Launch[int](eng, NewChain(src, func(r Result[int]) Result[int] {
		return Ok(r.Value * 2)
	}))

	eng.waitForIdle()
	assert.Equal(t, Completed, doubled.State())
	assert.Equal(t, 20, doubled.Result().Value)
}

func TestWrappingChainAwaitsInnerFuture(t *testing.T) {
	eng := New(WithWorkers(2))
	defer eng.Close()

	src := Launch[int](eng, &constantGenerator{result: Ok(3)})

	wrapped := Launch[int](eng, NewWrappingChain(src, func(r Result[int]) Future[int] {
		return Launch[int](eng, &constantGenerator{result: Ok(r.Value + 100)})
	}))

	eng.waitForIdle()
	assert.Equal(t, Completed, wrapped.State())
	assert.Equal(t, 103, wrapped.Result().Value)
}

func TestFuncGeneratorProducesAfterAwaiting(t *testing.T) {
	eng := New(WithWorkers(2))
	defer eng.Close()

	dep := Launch[int](eng, &constantGenerator{result: Ok(7)})

	step := func(_ *Engine, done *bool, state *int) Resume[int] {
		if *state == 0 {
			*state = 1
			return Awaiting[int](dep)
		}
		*done = true
		return Produced[int](Ok(dep.Result().Value * 10))
	}

	g := NewFuncGenerator(step, 0)
	require.False(t, g.Done())

	out := Launch[int](eng, g)
	eng.waitForIdle()
	assert.Equal(t, Completed, out.State())
	assert.Equal(t, 70, out.Result().Value)
	assert.True(t, g.Done())
}
