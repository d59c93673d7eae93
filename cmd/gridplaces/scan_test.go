package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rendis/gridplaces/internal/engine/pipeline"
	"github.com/rendis/gridplaces/internal/model"
)

func TestPrintSummary_ReportsAPIUsage(t *testing.T) {
	params := model.RunParams{Keyword: "bakery", Output: "out.csv", Mode: model.ModeAppend}
	res := &pipeline.Result{
		Status: pipeline.StatusPartial, Tiles: 4, TilesSkipped: 1, IDs: 1200,
		NewRows: 1100, PriorRows: 50, Duplicates: 3, Rows: 1147, Duration: 90 * time.Second,
	}

	var buf bytes.Buffer
	printSummary(&buf, params, res, apiUsage{Requests: 1312, RateLimits: 2}, "run.log")

	out := buf.String()
	assert.Contains(t, out, "gridplaces partial")
	assert.Contains(t, out, "API calls:  1,312 (2 rate limited)")
	assert.Contains(t, out, "Prior:      50 (3 replaced)")
	assert.Contains(t, out, "Total:      1,147 rows")
	assert.Contains(t, out, "Log:        run.log")
}

func TestProfileArg(t *testing.T) {
	assert.Equal(t, "a.json", profileArg([]string{"-keyword", "x", "-profile", "a.json"}))
	assert.Equal(t, "b.json", profileArg([]string{"--profile=b.json"}))
	assert.Empty(t, profileArg([]string{"-keyword", "profile"}))
}
