// Package arith provides an illustrative endpoint with the operations add, sub and div
// together with a typed client stub.
//
// Operands are integers or floats. The result of add and sub is an integer if both
// operands are integers and the result fits into an int64, otherwise it is a float.
// div always returns a float.
package arith

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/ValentinKolb/mqRPC/rpc/server"
	"github.com/spf13/cast"
)

const (
	EndpointName = "arith"

	MethodAdd = "add"
	MethodSub = "sub"
	MethodDiv = "div"
)

var ErrDivisionByZero = errors.New("division by zero")

// NewEndpoint creates the arith endpoint
func NewEndpoint() server.IEndpoint {
	return server.NewEndpoint(EndpointName,
		server.Method{Name: MethodAdd, Handler: add},
		server.Method{Name: MethodSub, Handler: sub},
		server.Method{Name: MethodDiv, Handler: div},
	)
}

// --------------------------------------------------------------------------
// Handlers
// --------------------------------------------------------------------------

func add(_ context.Context, args common.Args, kwargs common.Kwargs) (any, error) {
	x, y, err := operands(MethodAdd, args, kwargs)
	if err != nil {
		return nil, err
	}
	if x.isInt && y.isInt {
		if sum, ok := addInt(x.i, y.i); ok {
			return sum, nil
		}
	}
	return x.float() + y.float(), nil
}

func sub(_ context.Context, args common.Args, kwargs common.Kwargs) (any, error) {
	x, y, err := operands(MethodSub, args, kwargs)
	if err != nil {
		return nil, err
	}
	if x.isInt && y.isInt {
		if diff, ok := subInt(x.i, y.i); ok {
			return diff, nil
		}
	}
	return x.float() - y.float(), nil
}

func div(_ context.Context, args common.Args, kwargs common.Kwargs) (any, error) {
	x, y, err := operands(MethodDiv, args, kwargs)
	if err != nil {
		return nil, err
	}
	if y.float() == 0 {
		return nil, ErrDivisionByZero
	}
	return x.float() / y.float(), nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// number is an operand that keeps track of whether it was given as integer
type number struct {
	i     int64
	f     float64
	isInt bool
}

func (n number) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

// addInt returns x + y, ok is false if the result overflows int64
func addInt(x, y int64) (int64, bool) {
	sum := x + y
	if (x > 0 && y > 0 && sum < 0) || (x < 0 && y < 0 && sum >= 0) {
		return 0, false
	}
	return sum, true
}

// subInt returns x - y, ok is false if the result overflows int64
func subInt(x, y int64) (int64, bool) {
	diff := x - y
	if (x >= 0 && y < 0 && diff < 0) || (x < 0 && y > 0 && diff >= 0) {
		return 0, false
	}
	return diff, true
}

// operands returns x and y, either given positionally or as keyword arguments
func operands(method string, args common.Args, kwargs common.Kwargs) (number, number, error) {
	var rawX, rawY any
	switch {
	case args.Len() == 2:
		rawX, rawY = args[0], args[1]
	case args.Len() == 0 && kwargs.Has("x") && kwargs.Has("y"):
		rawX, rawY = kwargs["x"], kwargs["y"]
	default:
		return number{}, number{}, fmt.Errorf("%s expects 2 arguments (x, y), got %d", method, args.Len()+len(kwargs))
	}

	x, err := toNumber(rawX)
	if err != nil {
		return number{}, number{}, fmt.Errorf("%s: x: %w", method, err)
	}
	y, err := toNumber(rawY)
	if err != nil {
		return number{}, number{}, fmt.Errorf("%s: y: %w", method, err)
	}
	return x, y, nil
}

// toNumber converts an opaque argument value into a number
func toNumber(v any) (number, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return number{i: i, isInt: true}, nil
		}
		f, err := n.Float64()
		if err != nil {
			return number{}, fmt.Errorf("unsupported operand %q", n.String())
		}
		return number{f: f}, nil
	case float32, float64:
		return number{f: cast.ToFloat64(n)}, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		i, err := cast.ToInt64E(n)
		if err != nil {
			return number{}, err
		}
		return number{i: i, isInt: true}, nil
	default:
		return number{}, fmt.Errorf("unsupported operand type %T", v)
	}
}
