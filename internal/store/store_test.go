package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ttp-monitor/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "ttp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecords() []types.AnalysisRecord {
	return []types.AnalysisRecord{
		{
			SourceURL:   "http://a",
			ContentType: types.TypeIOCBased,
			Data: map[string]any{
				"threat_name": "Malware X",
				"iocs":        map[string]any{"ips": []any{"1.2.3.4"}},
			},
		},
		{
			SourceURL:   "http://b",
			ContentType: types.TypeNotActionable,
			Summary:     "vendor marketing",
		},
		{
			SourceURL:   "http://c",
			ContentType: types.TypeVulnerability,
			Data:        map[string]any{"error": "connection reset"},
		},
	}
}

func TestSaveRunRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	started := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)

	runID, err := s.SaveRun(ctx, "ollama/llama3.1", started, sampleRecords())
	require.NoError(t, err)

	run, err := s.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, "ollama/llama3.1", run.Model)
	assert.Equal(t, started, run.StartedAt)
	assert.Equal(t, 1, run.Actionable)
	assert.Equal(t, 1, run.Informational)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, 3, run.Total())

	records, err := s.RunRecords(ctx, runID)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Input order survives the round trip.
	assert.Equal(t, "http://a", records[0].SourceURL)
	assert.Equal(t, "http://b", records[1].SourceURL)
	assert.Equal(t, "http://c", records[2].SourceURL)

	iocs := records[0].Data["iocs"].(map[string]any)
	assert.Equal(t, []any{"1.2.3.4"}, iocs["ips"])
	assert.Nil(t, records[1].Data)
	assert.Equal(t, "connection reset", records[2].Data["error"])
}

func TestLatestRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.LatestRun(ctx)
	require.Error(t, err, "empty store has no latest run")

	first, err := s.SaveRun(ctx, "m", time.Now(), sampleRecords())
	require.NoError(t, err)
	second, err := s.SaveRun(ctx, "m", time.Now(), nil)
	require.NoError(t, err)
	require.Greater(t, second, first)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, latest.ID)
	assert.Equal(t, 0, latest.Total())
}

func TestCountByType(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	runID, err := s.SaveRun(ctx, "m", time.Now(), sampleRecords())
	require.NoError(t, err)

	counts, err := s.CountByType(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, map[types.ContentType]int{
		types.TypeIOCBased:      1,
		types.TypeNotActionable: 1,
		types.TypeVulnerability: 1,
	}, counts)
}
