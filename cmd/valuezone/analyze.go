package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ValueZone/internal/chart"
	"ValueZone/internal/model"
	"ValueZone/internal/notifier"
)

var (
	analyzeJSON  bool
	analyzeChart string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <SYMBOL>",
	Short: "Classify the latest close of SYMBOL into a valuation zone",
	Example: `  valuezone analyze AAPL
  valuezone analyze btc-usd --json
  valuezone analyze SPY --chart spy.svg`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the analysis as JSON")
	analyzeCmd.Flags().StringVar(&analyzeChart, "chart", "", "write an SVG chart to this file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.service.Analyze(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.recorder.RecordAnalysis(ctx, res); err != nil {
		fmt.Fprintf(os.Stderr, "warning: record analysis: %v\n", err)
	}

	if analyzeChart != "" {
		if err := writeChart(analyzeChart, res); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(out, "%s\n", chart.Title(res))
	fmt.Fprintf(out, "  Current Price:        %.2f\n", res.Assignment.Price)
	fmt.Fprintf(out, "  %dW Moving Average:   %.2f (%+.1f%%)\n", res.Window, res.LatestBaseline, res.Indicators.DeviationPct)
	fmt.Fprintf(out, "  Current Value Zone:   %s\n\n", chart.Label(res.Assignment.Zone))
	fmt.Fprintln(out, "Price Ranges by Zone")
	for _, z := range chart.LegendOrder() {
		if b, ok := res.Band(z); ok {
			fmt.Fprintf(out, "  %-15s %s\n", chart.Label(z)+":", notifier.FormatBandRange(b))
		}
	}
	return nil
}

func writeChart(path string, a *model.Analysis) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := chart.Render(f, a); err != nil {
		f.Close()
		return fmt.Errorf("render chart: %w", err)
	}
	return f.Close()
}
