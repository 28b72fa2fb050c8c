package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/ValentinKolb/mqRPC/cmd/util"
	"github.com/ValentinKolb/mqRPC/endpoints/arith"
	"github.com/ValentinKolb/mqRPC/rpc/client"
	"github.com/ValentinKolb/mqRPC/rpc/common"
	"github.com/ValentinKolb/mqRPC/rpc/server"
	"github.com/ValentinKolb/mqRPC/rpc/transport/memory"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	DemoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Run server and client in one process and issue sample calls",
		Long: `Start the arith endpoint and a client in one process and call add(1, 2), sub(1, 2),
div(1, 0) and the unregistered mul(1, 2). With --transport memory (default for this
command) no broker is needed.`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

// sampleCall is one call of the demo
type sampleCall struct {
	method string
	args   []any
}

var sampleCalls = []sampleCall{
	{arith.MethodAdd, []any{1, 2}},
	{arith.MethodSub, []any{1, 2}},
	{arith.MethodDiv, []any{1, 0}},
	{"mul", []any{1, 2}},
}

func init() {
	util.SetupRPCClientFlags(DemoCmd)
}

func processConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	// the demo runs without broker unless a transport is given explicitly
	if !cmd.Flags().Changed("transport") && viper.GetString("transport") == "amqp" {
		viper.Set("transport", "memory")
	}
	return util.InitLogging()
}

func run(_ *cobra.Command, _ []string) error {
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	broker := memory.NewBroker()
	bus := util.GetBusConfig()

	// Start the server
	st, err := util.GetServerTransport(broker)
	if err != nil {
		return err
	}
	serv := server.NewRPCServer(common.ServerConfig{
		Transport: common.ServerTransportConfig{BusConfig: bus},
		LogLevel:  viper.GetString("log-level"),
	}, st, s)
	if err := serv.Register(arith.NewEndpoint()); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveErr := make(chan error, 1)
	go func() { serveErr <- serv.Serve(ctx) }()
	defer serv.Close()

	if err := waitForServer(broker, bus, serveErr); err != nil {
		return err
	}

	// Connect the client
	ct, err := util.GetClientTransport(broker)
	if err != nil {
		return err
	}
	c, err := client.NewRPCClient(*util.GetClientConfig(), ct, s)
	if err != nil {
		return err
	}
	defer c.Close()

	for _, call := range sampleCalls {
		result, err := c.Call(ctx, call.method, call.args...)
		if msg, ok := common.IsRemoteError(err); ok {
			fmt.Printf("%s%v => error: %s\n", call.method, call.args, msg)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s%v => %v\n", call.method, call.args, result)
	}
	return nil
}

// waitForServer blocks until the server queue is bound. Calls published before
// that are unroutable and dropped. On a real broker the binding can not be observed,
// the server gets a fixed grace period instead.
func waitForServer(broker *memory.Broker, bus common.BusConfig, serveErr <-chan error) error {
	if viper.GetString("transport") != "memory" {
		select {
		case err := <-serveErr:
			return serverStopped(err)
		case <-time.After(time.Second):
			return nil
		}
	}

	deadline := time.After(5 * time.Second)
	for broker.Bound(bus.Exchange, bus.Topic) == 0 {
		select {
		case err := <-serveErr:
			return serverStopped(err)
		case <-deadline:
			return fmt.Errorf("server did not start in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
	return nil
}

func serverStopped(err error) error {
	if err == nil {
		return fmt.Errorf("server stopped")
	}
	return fmt.Errorf("server stopped: %w", err)
}
