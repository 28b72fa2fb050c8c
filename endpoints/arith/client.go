package arith

import (
	"context"

	"github.com/ValentinKolb/mqRPC/rpc/client"
)

// Client is a typed stub for the arith endpoint
type Client struct {
	rpc *client.RPCClient
}

// NewClient wraps an RPC client session
func NewClient(rpc *client.RPCClient) *Client {
	return &Client{rpc: rpc}
}

// Add returns x + y
func (c *Client) Add(ctx context.Context, x, y float64) (float64, error) {
	return c.call(ctx, MethodAdd, x, y)
}

// Sub returns x - y
func (c *Client) Sub(ctx context.Context, x, y float64) (float64, error) {
	return c.call(ctx, MethodSub, x, y)
}

// Div returns x / y, dividing by zero is reported as remote error "division by zero"
func (c *Client) Div(ctx context.Context, x, y float64) (float64, error) {
	return c.call(ctx, MethodDiv, x, y)
}

func (c *Client) call(ctx context.Context, method string, x, y float64) (float64, error) {
	var result float64
	if err := c.rpc.CallInto(ctx, &result, method, []any{x, y}, nil); err != nil {
		return 0, err
	}
	return result, nil
}
