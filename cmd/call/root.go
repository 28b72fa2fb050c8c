package call

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/mqRPC/cmd/util"
	"github.com/ValentinKolb/mqRPC/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rpcClient *client.RPCClient

	CallCmd = &cobra.Command{
		Use:   "call <method> [args...]",
		Short: "Call a remote method",
		Long: `Call a remote method and print the result as JSON.
Arguments are parsed as JSON literals (1, 2.5, true, "text", [1,2], {"a":1}),
anything else is passed as string.

The subcommand perf takes precedence over a remote method of the same name,
such a method can not be called with this command.`,
		Example: `  mqrpc call add 1 2
  mqrpc call div --kwarg x=1 --kwarg y=4
  mqrpc call add 1 2 --notify`,
		Args:               cobra.MinimumNArgs(1),
		PersistentPreRunE:  setupClient,
		PersistentPostRunE: closeClient,
		RunE:               runCall,
	}
)

func init() {
	util.SetupRPCClientFlags(CallCmd)

	key := "kwarg"
	CallCmd.Flags().StringArray(key, nil, util.WrapString("Keyword argument in the format key=value (can be repeated)"))

	key = "notify"
	CallCmd.Flags().Bool(key, false, util.WrapString("Publish the call without waiting for a reply"))

	CallCmd.AddCommand(perfCmd)
}

// runCall executes a single call
func runCall(cmd *cobra.Command, args []string) error {
	pairs, err := cmd.Flags().GetStringArray("kwarg")
	if err != nil {
		return err
	}
	kwargs, err := util.ParseKwargs(pairs)
	if err != nil {
		return err
	}

	method, params := args[0], util.ParseArguments(args[1:])

	if viper.GetBool("notify") {
		return rpcClient.Notify(context.Background(), method, params, kwargs)
	}

	result, err := rpcClient.CallKw(context.Background(), method, params, kwargs)
	if err != nil {
		return err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// setupClient creates the client from flags and environment variables
func setupClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	if err := util.InitLogging(); err != nil {
		return err
	}

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetClientTransport(nil)
	if err != nil {
		return err
	}

	rpcClient, err = client.NewRPCClient(*util.GetClientConfig(), t, s)
	return err
}

func closeClient(_ *cobra.Command, _ []string) error {
	if rpcClient == nil {
		return nil
	}
	return rpcClient.Close()
}
