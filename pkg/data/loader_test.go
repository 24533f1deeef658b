package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datakit/pkg/frame"
)

func TestFromRecordsSniffing(t *testing.T) {
	header := []string{"flag", "count", "ratio", "name", "mixed"}
	rows := [][]string{
		{"true", "1", "1.5", "ada", "1"},
		{"false", "2", "NA", "bob", "x"},
		{"NA", "3", "2.5", "", "2"},
	}
	fr, err := FromRecords(header, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, fr.NumRows())

	flag, _ := fr.Column("flag")
	assert.Equal(t, true, flag.Value(0))
	assert.True(t, frame.IsMissing(flag.Value(2)))

	count, _ := fr.Column("count")
	assert.Equal(t, int64(2), count.Value(1))

	ratio, _ := fr.Column("ratio")
	assert.Equal(t, 1.5, ratio.Value(0))
	assert.True(t, frame.IsMissing(ratio.Value(1)))

	name, _ := fr.Column("name")
	assert.Equal(t, "ada", name.Value(0))
	assert.True(t, frame.IsMissing(name.Value(2)), "empty cell is missing, not empty string")

	// one non-numeric cell demotes the whole column to strings
	mixed, _ := fr.Column("mixed")
	assert.Equal(t, "1", mixed.Value(0))
	assert.Equal(t, "x", mixed.Value(1))
}

func TestFromRecordsRaggedRow(t *testing.T) {
	_, err := FromRecords([]string{"a", "b"}, [][]string{{"1"}})
	require.Error(t, err)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	content := "id,score\n1,0.5\n2,null\n3,1.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	fr := LoadCSV(path, nil)
	require.NotNil(t, fr)
	assert.Equal(t, 3, fr.NumRows())

	score, _ := fr.Column("score")
	assert.True(t, frame.IsMissing(score.Value(1)))
	assert.Equal(t, 1.5, score.Value(2))
}

func TestLoadCSVMissingFileIsSoftFailure(t *testing.T) {
	fr := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"), nil)
	assert.Nil(t, fr)
}
