package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/mqRPC/cmd/call"
	"github.com/ValentinKolb/mqRPC/cmd/demo"
	"github.com/ValentinKolb/mqRPC/cmd/serve"
	"github.com/ValentinKolb/mqRPC/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "mqrpc",
		Short: "RPC over a message broker",
		Long: fmt.Sprintf(`mqRPC (v%s)

Remote procedure calls carried over a topic based publish/subscribe
message broker. Calls are published to a routing topic and answered
on a private reply queue, matched by a correlation token.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mqRPC",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mqRPC v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(call.CallCmd)
	RootCmd.AddCommand(demo.DemoCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "amqp", util.WrapString("transport to use (amqp, memory - memory only works within one process, see demo)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
