package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolInternIsIdempotent(t *testing.T) {
	p := NewPool()
	a1 := p.Intern("com.example.MyClass")
	a2 := p.Intern("com.example.MyClass")
	assert.Equal(t, a1, a2)
	assert.Equal(t, 1, p.Len())
}

func TestPoolResolveRoundTrip(t *testing.T) {
	p := NewPool()
	a := p.Intern("hello")
	got, ok := p.Lookup(a)
	require.True(t, ok)
	assert.Equal(t, "hello", got)
}

func TestPoolResolveUnknownAtomPanics(t *testing.T) {
	p := NewPool()
	assert.Panics(t, func() {
		p.Resolve(Atom(99))
	})
}

func TestPoolLoadStringsPreservesOrder(t *testing.T) {
	p := NewPool()
	p.LoadStrings([]string{"a", "b", "c"})
	assert.Equal(t, Atom(1), p.Intern("a"))
	assert.Equal(t, Atom(2), p.Intern("b"))
	assert.Equal(t, Atom(3), p.Intern("c"))
	assert.Equal(t, []string{"a", "b", "c"}, p.Strings())
}

func TestPathPoolDistinctFromStringPool(t *testing.T) {
	paths := NewPathPool()
	a := paths.Intern("/tmp/foo.go")
	got, ok := paths.Lookup(a)
	require.True(t, ok)
	assert.Equal(t, "/tmp/foo.go", got)
}

func TestPoolConcurrentInternSameString(t *testing.T) {
	p := NewPool()
	const n = 64
	results := make(chan Atom, n)
	for i := 0; i < n; i++ {
		go func() {
			results <- p.Intern("shared")
		}()
	}
	first := <-results
	for i := 1; i < n; i++ {
		assert.Equal(t, first, <-results)
	}
}
