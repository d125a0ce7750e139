package main

import "github.com/rxtech-lab/argo-backtest/internal/types"

// ProgressMsg reports how many bars the running backtest has processed.
type ProgressMsg struct {
	Current int
	Total   int
}

// BacktestDoneMsg carries the result of a finished run.
type BacktestDoneMsg struct {
	Result *types.BacktestResult
}

// BacktestErrorMsg indicates the run failed or was cancelled.
type BacktestErrorMsg struct {
	Err error
}
