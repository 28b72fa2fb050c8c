package arith

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/ValentinKolb/mqRPC/rpc/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(t *testing.T, method string) server.HandlerFunc {
	t.Helper()
	r := server.NewRegistry()
	require.NoError(t, r.Register(NewEndpoint()))
	h, endpoint, ok := r.Lookup(method)
	require.True(t, ok, "method %s not registered", method)
	assert.Equal(t, EndpointName, endpoint)
	return h
}

func TestEndpointMethods(t *testing.T) {
	r := server.NewRegistry()
	require.NoError(t, r.Register(NewEndpoint()))
	assert.Equal(t, []string{MethodAdd, MethodSub, MethodDiv}, r.Methods())
}

func TestOperations(t *testing.T) {
	tests := []struct {
		method string
		args   common.Args
		want   any
	}{
		{MethodAdd, common.Args{1, 2}, int64(3)},
		{MethodAdd, common.Args{json.Number("1"), json.Number("2")}, int64(3)},
		{MethodAdd, common.Args{json.Number("1.5"), 2}, 3.5},
		{MethodSub, common.Args{int32(5), uint8(7)}, int64(-2)},
		{MethodSub, common.Args{float32(0.5), 0.25}, 0.25},
		{MethodDiv, common.Args{1, 4}, 0.25},
		{MethodDiv, common.Args{json.Number("9"), json.Number("3")}, 3.0},
	}

	for _, tt := range tests {
		v, err := lookup(t, tt.method)(context.Background(), tt.args, common.Kwargs{})
		require.NoError(t, err, "%s%v", tt.method, tt.args)
		assert.Equal(t, tt.want, v, "%s%v", tt.method, tt.args)
	}
}

func TestIntegerOverflowFallsBackToFloat(t *testing.T) {
	tests := []struct {
		method string
		args   common.Args
		want   any
	}{
		{MethodAdd, common.Args{json.Number("9223372036854775807"), json.Number("1")}, float64(math.MaxInt64) + 1},
		{MethodAdd, common.Args{int64(math.MinInt64), int64(-1)}, float64(math.MinInt64) - 1},
		{MethodSub, common.Args{int64(math.MinInt64), int64(1)}, float64(math.MinInt64) - 1},
		{MethodSub, common.Args{int64(math.MaxInt64), int64(-1)}, float64(math.MaxInt64) + 1},
		{MethodAdd, common.Args{int64(math.MaxInt64), int64(-1)}, int64(math.MaxInt64 - 1)},
		{MethodSub, common.Args{int64(-1), int64(math.MaxInt64)}, int64(math.MinInt64)},
	}

	for _, tt := range tests {
		got, err := lookup(t, tt.method)(context.Background(), tt.args, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s%v", tt.method, tt.args)
	}
}

func TestKeywordOperands(t *testing.T) {
	v, err := lookup(t, MethodSub)(context.Background(), common.Args{}, common.Kwargs{"x": 10, "y": 3})
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestDivisionByZero(t *testing.T) {
	_, err := lookup(t, MethodDiv)(context.Background(), common.Args{1, 0}, common.Kwargs{})
	assert.ErrorIs(t, err, ErrDivisionByZero)
	assert.Equal(t, "division by zero", err.Error())

	_, err = lookup(t, MethodDiv)(context.Background(), common.Args{1.0, json.Number("0.0")}, common.Kwargs{})
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestInvalidOperands(t *testing.T) {
	add := lookup(t, MethodAdd)

	_, err := add(context.Background(), common.Args{1}, common.Kwargs{})
	assert.EqualError(t, err, "add expects 2 arguments (x, y), got 1")

	_, err = add(context.Background(), common.Args{1, "two"}, common.Kwargs{})
	assert.EqualError(t, err, "add: y: unsupported operand type string")

	_, err = add(context.Background(), common.Args{json.Number("abc"), 1}, common.Kwargs{})
	assert.Error(t, err)
}
