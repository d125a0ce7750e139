package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StrategyInfo identifies the strategy that produced a result.
type StrategyInfo struct {
	ID     string         `yaml:"id" json:"id"`
	Name   string         `yaml:"name" json:"name"`
	Params map[string]any `yaml:"params" json:"params"`
}

// BacktestResult is the outcome of one run.
type BacktestResult struct {
	ID            string
	Timestamp     time.Time
	Symbol        string
	Strategy      StrategyInfo
	InitialEquity float64
	// FinalEquity is the last recorded equity, before acting on the last bar.
	FinalEquity float64
	ReturnRate  float64
	Trades      []Trade
	// EquityCurve has exactly one entry per bar.
	EquityCurve []float64
	Metrics     PerformanceMetrics
	// Marks annotate the bars of executed trades.
	Marks []Mark
	// Frame carries the bars, the computed indicator columns and the signals.
	Frame *Frame
}

// RunStats is the exported summary of a run.
type RunStats struct {
	ID             string             `yaml:"id" json:"id"`
	Timestamp      time.Time          `yaml:"timestamp" json:"timestamp"`
	Symbol         string             `yaml:"symbol" json:"symbol"`
	Strategy       StrategyInfo       `yaml:"strategy" json:"strategy"`
	InitialEquity  float64            `yaml:"initial_equity" json:"initial_equity"`
	FinalEquity    float64            `yaml:"final_equity" json:"final_equity"`
	ReturnRate     float64            `yaml:"return_rate" json:"return_rate"`
	Metrics        PerformanceMetrics `yaml:"metrics" json:"metrics"`
	TradesFilePath string             `yaml:"trades_file_path" json:"trades_file_path"`
	EquityFilePath string             `yaml:"equity_file_path" json:"equity_file_path"`
	MarksFilePath  string             `yaml:"marks_file_path" json:"marks_file_path"`
	DataPath       string             `yaml:"data_path" json:"data_path"`
}

// Stats builds the exported summary of r. File paths are filled by the writer.
func (r *BacktestResult) Stats() RunStats {
	return RunStats{
		ID:             r.ID,
		Timestamp:      r.Timestamp,
		Symbol:         r.Symbol,
		Strategy:       r.Strategy,
		InitialEquity:  r.InitialEquity,
		FinalEquity:    r.FinalEquity,
		ReturnRate:     r.ReturnRate,
		Metrics:        r.Metrics,
		TradesFilePath: "",
		EquityFilePath: "",
		MarksFilePath:  "",
		DataPath:       "",
	}
}

// WriteRunStats writes stats to path as YAML.
func WriteRunStats(path string, stats RunStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run stats to file: %w", err)
	}

	return nil
}

// ReadRunStats reads stats written by WriteRunStats.
func ReadRunStats(path string) (RunStats, error) {
	var stats RunStats

	data, err := os.ReadFile(path)
	if err != nil {
		return stats, fmt.Errorf("failed to read run stats: %w", err)
	}

	if err := yaml.Unmarshal(data, &stats); err != nil {
		return stats, fmt.Errorf("failed to unmarshal run stats: %w", err)
	}

	return stats, nil
}
