package server

import (
	"context"

	"github.com/ValentinKolb/mqRPC/rpc/common"
)

// HandlerFunc is a single remotely callable operation.
// The returned value is sent as the data of the success envelope, a returned
// error is sent as error envelope carrying err.Error().
type HandlerFunc func(ctx context.Context, args common.Args, kwargs common.Kwargs) (any, error)

// Method is a named operation of an endpoint
type Method struct {
	Name    string
	Handler HandlerFunc
}

// IEndpoint is a handler object exposing a set of named operations
type IEndpoint interface {
	// Name identifies the endpoint in logs and errors
	Name() string
	// Methods returns the operations of the endpoint in the order they should be listed
	Methods() []Method
}

// NewEndpoint creates an endpoint from a list of methods
//
// Usage:
//
//	echo := server.NewEndpoint("echo", server.Method{
//		Name: "echo",
//		Handler: func(ctx context.Context, args common.Args, kwargs common.Kwargs) (any, error) {
//			return args.At(0)
//		},
//	})
func NewEndpoint(name string, methods ...Method) IEndpoint {
	return &endpointImpl{
		name:    name,
		methods: methods,
	}
}

type endpointImpl struct {
	name    string
	methods []Method
}

func (e *endpointImpl) Name() string {
	return e.name
}

func (e *endpointImpl) Methods() []Method {
	return e.methods
}
