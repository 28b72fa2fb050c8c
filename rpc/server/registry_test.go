package server

import (
	"context"
	"testing"

	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constHandler(v any) HandlerFunc {
	return func(context.Context, common.Args, common.Kwargs) (any, error) {
		return v, nil
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(
		NewEndpoint("first", Method{Name: "a", Handler: constHandler(1)}, Method{Name: "b", Handler: constHandler(2)}),
		NewEndpoint("second", Method{Name: "c", Handler: constHandler(3)}),
	))

	h, endpoint, ok := r.Lookup("c")
	require.True(t, ok)
	assert.Equal(t, "second", endpoint)
	v, err := h(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, _, ok = r.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b", "c"}, r.Methods())
	assert.Equal(t, 3, r.Len())
	assert.Len(t, r.Endpoints(), 2)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewEndpoint("first", Method{Name: "a", Handler: constHandler(1)})))

	// exposed by another endpoint
	err := r.Register(NewEndpoint("second", Method{Name: "b", Handler: constHandler(2)}, Method{Name: "a", Handler: constHandler(3)}))
	assert.ErrorIs(t, err, common.ErrDuplicateMethod)

	// nothing of the rejected endpoint was added
	_, _, ok := r.Lookup("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, r.Methods())

	// duplicated within one endpoint
	err = r.Register(NewEndpoint("third", Method{Name: "x", Handler: constHandler(1)}, Method{Name: "x", Handler: constHandler(2)}))
	assert.ErrorIs(t, err, common.ErrDuplicateMethod)

	// first match still wins
	h, endpoint, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "first", endpoint)
	v, _ := h(context.Background(), nil, nil)
	assert.Equal(t, 1, v)
}

func TestRegistryRejectsInvalidMethods(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Register(NewEndpoint("e", Method{Name: "", Handler: constHandler(1)})), common.ErrEmptyMethod)
	assert.Error(t, r.Register(NewEndpoint("e", Method{Name: "nil"})))
	assert.Equal(t, 0, r.Len())
}
