package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"HypeChart/internal/report"
)

func TestExitCode(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name string
		ctx  context.Context
		err  error
		want int
	}{
		{"success", context.Background(), nil, 0},
		{"source failed", context.Background(), fmt.Errorf("%w: stock", report.ErrSourceFailed), 1},
		{"interrupted", cancelled, fmt.Errorf("%w: stock", report.ErrSourceFailed), exitInterrupted},
		{"cancel error", context.Background(), fmt.Errorf("fetch: %w", context.Canceled), exitInterrupted},
		{"other", context.Background(), errors.New("render failed"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCode(tc.ctx, tc.err); got != tc.want {
				t.Errorf("exitCode = %d, want %d", got, tc.want)
			}
		})
	}
}
