package db

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/dynDB/cmd/util"
	"github.com/ValentinKolb/dynDB/lib/jsonv"
	"github.com/ValentinKolb/dynDB/lib/recordstore"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:   "perf",
		Short: "Measures how fast records are saved to and loaded from the backend",
		Long: `Measures how fast records are saved to and loaded from the backend.

Every thread works on its own record, records are filled with string values of
--value-size bytes until they hold --entries keys.`,
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfRecordPrefix = "__perf"
	perfEntries      = 100
	perfValueSize    = 64
	perfNumThreads   = 4
	perfSkip         = make([]string, 0)
)

func init() {
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. save,load)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 4, util.WrapString("Number of threads to use for the benchmark"))
	key = "entries"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many keys every test record holds"))
	key = "value-size"
	perfTestCmd.Flags().Int(key, 64, util.WrapString("Size of every value in bytes"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfEntries = max(viper.GetInt("entries"), 1)
	perfValueSize = max(viper.GetInt("value-size"), 0)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// perfResult is one benchmark plus the latencies of the single operations
type perfResult struct {
	bench testing.BenchmarkResult
	timer metrics.Timer
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for dyndb record stores")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("Backend: %s\n", viper.GetString("backend"))
	if viper.GetString("backend") == string(util.BackendRemote) {
		fmt.Println(util.GetClientConfig().String())
	}
	fmt.Printf("Host: %s\n", host.ID())
	fmt.Printf("Threads: %d, Entries: %d, Value size: %d bytes\n", perfNumThreads, perfEntries, perfValueSize)
	fmt.Println()

	fmt.Println("starting tests...")

	registry := metrics.NewRegistry()
	results := make(map[string]perfResult)
	names := []string{"save", "load", "set-save", "exists"}

	for _, name := range names {
		timer := metrics.GetOrRegisterTimer(name, registry)
		bench := testing.Benchmark(func(b *testing.B) {
			if shouldSkip(name) {
				return
			}
			benchmark(b, name, timer)
		})
		results[name] = perfResult{bench: bench, timer: timer}
		printResult(name, results[name])
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, names, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// benchmark runs one test, every goroutine owns a record of its own
func benchmark(b *testing.B, name string, timer metrics.Timer) {
	value := jsonv.String(strings.Repeat("x", perfValueSize))

	var (
		mu      sync.Mutex
		records []string
		worker  atomic.Int64
	)
	b.Cleanup(func() {
		for _, id := range records {
			if _, err := recordstore.Delete(id, host, recordOptions()...); err != nil {
				log.Printf("(%s) - error deleting record: %v\n", name, err)
			}
		}
	})

	b.SetParallelism(perfNumThreads)
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		id := fmt.Sprintf("%s-%s-%d", perfRecordPrefix, name, worker.Add(1))
		store, err := fillRecord(id, value)
		if err != nil {
			log.Printf("(%s) - error preparing record: %v\n", name, err)
			return
		}
		mu.Lock()
		records = append(records, id)
		mu.Unlock()

		counter := 0
		for pb.Next() {
			start := time.Now()
			switch name {
			case "save":
				_, err = store.Save()
			case "load":
				_, err = recordstore.Open(id, host, recordOptions()...)
			case "set-save":
				store.Set("counter", jsonv.Number(counter))
				_, err = store.Save()
			case "exists":
				_, err = recordstore.Exists(id, host, recordOptions()...)
			}
			timer.UpdateSince(start)
			if err != nil {
				log.Printf("(%s) - error running operation: %v\n", name, err)
			}
			counter++
		}
	})
}

// fillRecord creates a saved record with perfEntries keys
func fillRecord(id string, value jsonv.Value) (*recordstore.Store, error) {
	store, err := recordstore.Open(id, host, recordOptions()...)
	if err != nil {
		return nil, err
	}
	for i := 0; i < perfEntries; i++ {
		store.Set("key-"+strconv.Itoa(i), value)
	}
	if _, err := store.Save(); err != nil {
		return nil, err
	}
	return store, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result perfResult) {
	if result.bench.NsPerOp() == 0 {
		fmt.Printf("%-12sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)
	ps := result.timer.Percentiles([]float64{0.5, 0.99})

	fmt.Printf("%-12s%s/op\t%.0f ops/sec\tp50 %s\tp99 %s\n",
		test, time.Duration(nsPerOp), opsPerSec, time.Duration(ps[0]), time.Duration(ps[1]))
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, names []string, results map[string]perfResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "OpsPerSec", "Operations", "MeanNs", "P50Ns", "P99Ns", "Skipped",
		"Backend", "Serializer", "Transport", "Threads", "Entries", "ValueSize",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, test := range names {
		result := results[test]
		skipped := result.bench.NsPerOp() == 0

		var nsPerOp, opsPerSec float64
		if !skipped {
			nsPerOp = math.Max(float64(result.bench.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}
		ps := result.timer.Percentiles([]float64{0.5, 0.99})

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			fmt.Sprintf("%.0f", opsPerSec),
			strconv.FormatInt(result.timer.Count(), 10),
			fmt.Sprintf("%.0f", result.timer.Mean()),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			strconv.FormatBool(skipped),
			viper.GetString("backend"),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfEntries),
			strconv.Itoa(perfValueSize),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
