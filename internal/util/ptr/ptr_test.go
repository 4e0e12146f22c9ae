package ptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTo(t *testing.T) {
	t.Parallel()
	v := 3
	p := To(v)
	v = 4
	assert.Equal(t, 3, *p)
}

func TestDeref(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 7, Deref[int](nil, 7))
	assert.Equal(t, 2.5, Deref(To(2.5), 0))
}
