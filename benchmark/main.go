// Package main provides a performance benchmarking tool for the trendline engine.
// It measures analysis times across report sizes, running each scenario multiple
// times against a fresh SQLite database, and writes CSV output for performance
// analysis and documentation.
//
// Scenarios:
// - first: every issue is new (inserts only)
// - reanalysis: the same report again (tracking and no-op saves)
// - churn: half of the issues disappear and as many new ones appear
//
// Usage: go run ./benchmark [work-dir]
//
//	work-dir: Directory for the temporary databases (defaults to the system temp dir)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/trendline/core"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/store"
	"github.com/huangsam/trendline/schema"
)

// BenchmarkResult holds the average time of each scenario for one report size.
type BenchmarkResult struct {
	Issues         int
	FirstTime      string
	ReanalysisTime string
	ChurnTime      string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir string
	Runs    int
	Sizes   []int
	Files   int
}

var benchRule = schema.MustParseRuleKey("squid:AvoidCycle")

func main() {
	workDir := os.TempDir()
	if len(os.Args) == 2 {
		workDir = os.Args[1]
	} else if len(os.Args) > 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: workDir,
		Runs:    3,
		Sizes:   []int{100, 1000, 10000},
		Files:   50,
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes every scenario for each configured report size.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: sizes %v, %d runs each, %d files\n", config.Sizes, config.Runs, config.Files)

	for _, size := range config.Sizes {
		fmt.Printf("Benchmarking %d issues\n", size)
		var first, reanalysis, churn []float64
		for run := 1; run <= config.Runs; run++ {
			times, err := runScenarios(config, size, run)
			if err != nil {
				return nil, err
			}
			first = append(first, times[0])
			reanalysis = append(reanalysis, times[1])
			churn = append(churn, times[2])
		}
		result := BenchmarkResult{
			Issues:         size,
			FirstTime:      average(first),
			ReanalysisTime: average(reanalysis),
			ChurnTime:      average(churn),
		}
		fmt.Printf("  First: %s, Reanalysis: %s, Churn: %s\n", result.FirstTime, result.ReanalysisTime, result.ChurnTime)
		results = append(results, result)
	}

	return results, nil
}

// runScenarios runs first, reanalysis and churn against one fresh database
// and returns their durations in seconds.
func runScenarios(config BenchmarkConfig, size, run int) ([3]float64, error) {
	var times [3]float64
	ctx := context.Background()
	dbPath := filepath.Join(config.WorkDir, fmt.Sprintf("trendline_bench_%d_%d.db", size, run))
	defer func() { _ = os.Remove(dbPath) }()

	st, err := store.Open(schema.SQLiteBackend, dbPath)
	if err != nil {
		return times, err
	}
	defer func() { _ = st.Close() }()

	if err := st.UpsertRule(ctx, &schema.Rule{Key: benchRule, Name: "Avoid cycles", Severity: schema.MajorSeverity}, time.Now()); err != nil {
		return times, err
	}
	settings, err := schema.ParsePeriodSettings(contract.DefaultPeriods)
	if err != nil {
		return times, err
	}
	engine := core.NewEngine(st, contract.SystemClock{}, core.EngineConfig{Identity: schema.ServerIdentity, Periods: settings})

	start := time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC)
	reports := []schema.Report{
		buildReport(config.Files, start, 0, size),
		buildReport(config.Files, start.AddDate(0, 0, 1), 0, size),
		buildReport(config.Files, start.AddDate(0, 0, 2), size/2, size+size/2),
	}
	for i, rep := range reports {
		began := time.Now()
		if _, err := engine.Run(ctx, rep); err != nil {
			return times, fmt.Errorf("run %d of %d issues: %w", i, size, err)
		}
		times[i] = time.Since(began).Seconds()
	}
	return times, nil
}

// buildReport returns a report raising issues numbered [from, to) spread over files.
func buildReport(files int, date time.Time, from, to int) schema.Report {
	rep := schema.Report{
		Project:      schema.ReportProject{Key: "bench", UUID: "bench-uuid"},
		AnalysisDate: date,
	}
	for f := range files {
		rep.Components = append(rep.Components, schema.ReportComponent{
			UUID:      fmt.Sprintf("bench-f%03d", f),
			Key:       fmt.Sprintf("bench:File%03d.java", f),
			Qualifier: schema.FileQualifier,
		})
	}
	for i := from; i < to; i++ {
		line := i
		rep.Issues = append(rep.Issues, schema.ReportIssue{
			Key:       fmt.Sprintf("bench-%06d", i),
			Rule:      benchRule,
			Component: fmt.Sprintf("bench:File%03d.java", i%files),
			Severity:  schema.MajorSeverity,
			Message:   "Cycle detected",
			Line:      &line,
		})
	}
	rep.Measures = []schema.ReportMeasure{{Component: "bench", Metric: schema.ViolationsMetric, Value: float64(to - from)}}
	return rep
}

func average(times []float64) string {
	if len(times) == 0 {
		return "n/a"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("trendline_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"issues", "first_avg", "reanalysis_avg", "churn_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{fmt.Sprint(result.Issues), result.FirstTime, result.ReanalysisTime, result.ChurnTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %6d issues: First: %s, Reanalysis: %s, Churn: %s\n",
			result.Issues, result.FirstTime, result.ReanalysisTime, result.ChurnTime)
	}
}
