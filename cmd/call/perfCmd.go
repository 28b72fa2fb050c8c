package call

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ValentinKolb/mqRPC/cmd/util"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfCmd = &cobra.Command{
		Use:     "perf [args...]",
		Short:   "Measure the call latency of a server",
		Long:    "Issue calls from concurrent workers and print latency percentiles and throughput. Without arguments the method is called with (1, 2).",
		Example: "  mqrpc call perf --method add --calls 5000 --threads 20 3 4",
		Args:    cobra.ArbitraryArgs,
		PreRunE: processPerfConfig,
		RunE:    runPerf,
	}
	perfMethod     = "add"
	perfCalls      = 1000
	perfNumThreads = 10
)

func init() {
	key := "method"
	perfCmd.Flags().String(key, "add", util.WrapString("Method to call"))
	key = "calls"
	perfCmd.Flags().Int(key, 1000, util.WrapString("Total number of calls"))
	key = "threads"
	perfCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent workers"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfMethod = viper.GetString("method")
	perfCalls = viper.GetInt("calls")
	perfNumThreads = viper.GetInt("threads")

	if perfCalls < 1 || perfNumThreads < 1 {
		return fmt.Errorf("calls and threads must be positive")
	}
	return nil
}

func runPerf(_ *cobra.Command, args []string) error {
	params := util.ParseArguments(args)
	if len(args) == 0 {
		params = []any{1, 2}
	}

	fmt.Println("Performance testing tool for mqRPC servers")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Method: %s%v, Calls: %d, Threads: %d\n", perfMethod, params, perfCalls, perfNumThreads)
	fmt.Println()

	timer := metrics.NewTimer()
	failures := metrics.NewCounter()

	// distribute the calls over the workers
	jobs := make(chan struct{}, perfCalls)
	for i := 0; i < perfCalls; i++ {
		jobs <- struct{}{}
	}
	close(jobs)

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < perfNumThreads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				callStart := time.Now()
				if _, err := rpcClient.Call(context.Background(), perfMethod, params...); err != nil {
					failures.Inc(1)
					util.Logger.Debugf("call failed: %v", err)
					continue
				}
				timer.UpdateSince(callStart)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	printResult(timer, failures.Count(), elapsed)
	return nil
}

// printResult prints the latency distribution of the successful calls
func printResult(timer metrics.Timer, failures int64, elapsed time.Duration) {
	if timer.Count() == 0 {
		fmt.Printf("all %d calls failed\n", failures)
		return
	}

	ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})
	opsPerSec := float64(timer.Count()) / elapsed.Seconds()

	fmt.Printf("%-12s%d (%d failed)\n", "calls", timer.Count(), failures)
	fmt.Printf("%-12s%s\n", "mean", time.Duration(timer.Mean()))
	fmt.Printf("%-12s%s\n", "min", time.Duration(timer.Min()))
	fmt.Printf("%-12s%s\n", "p50", time.Duration(ps[0]))
	fmt.Printf("%-12s%s\n", "p95", time.Duration(ps[1]))
	fmt.Printf("%-12s%s\n", "p99", time.Duration(ps[2]))
	fmt.Printf("%-12s%s\n", "max", time.Duration(timer.Max()))
	fmt.Printf("%-12s%.0f ops/sec\n", "throughput", opsPerSec)
}
