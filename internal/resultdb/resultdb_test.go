package resultdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndGetRun(t *testing.T) {
	db := openTestDB(t)

	rec := &RunRecord{
		RunID:      uuid.New().String(),
		ConfigJSON: `{"kernel_width_deg":0.2}`,
		NPixels:    441,
		PeakTS:     123.5,
		PeakSqrtTS: 11.11,
		PeakRow:    10,
		PeakCol:    12,
		PeakFlux:   1.5e-9,
		Elapsed:    250 * time.Millisecond,
		ReportPath: "report.html",
	}
	id, err := db.SaveRun(rec)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := db.GetRun(rec.RunID)
	require.NoError(t, err)
	assert.Equal(t, rec.RunID, got.RunID)
	assert.Equal(t, rec.ConfigJSON, got.ConfigJSON)
	assert.Equal(t, rec.NPixels, got.NPixels)
	assert.Equal(t, rec.PeakTS, got.PeakTS)
	assert.Equal(t, rec.PeakRow, got.PeakRow)
	assert.Equal(t, rec.PeakCol, got.PeakCol)
	assert.Equal(t, rec.Elapsed, got.Elapsed)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestListRuns(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 3; i++ {
		_, err := db.SaveRun(&RunRecord{
			RunID:      uuid.New().String(),
			ConfigJSON: "{}",
			NPixels:    100 + i,
			Elapsed:    time.Duration(i) * time.Millisecond,
		})
		require.NoError(t, err)
	}

	runs, err := db.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	// Newest first: the last inserted record has the largest pixel count.
	assert.Equal(t, 102, runs[0].NPixels)
	assert.Equal(t, 101, runs[1].NPixels)
}

func TestDuplicateRunID(t *testing.T) {
	db := openTestDB(t)

	rec := &RunRecord{RunID: "dup", ConfigJSON: "{}", NPixels: 1}
	_, err := db.SaveRun(rec)
	require.NoError(t, err)
	_, err = db.SaveRun(rec)
	assert.Error(t, err)
}

func TestGetRunMissing(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetRun("no-such-run")
	assert.Error(t, err)
}
