package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCompact(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "compact.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))
	return path
}

func TestValidateCleanFile(t *testing.T) {
	path := writeCompact(t, `{"metadata":{"version":"1"},"drugs":[
		{"name":"Aspirin","drugbank_ids":{"primary":"DB00945","secondary":[]}},
		{"name":"Ibuprofen","drugbank_ids":{"primary":"DB01050","secondary":[]}}
	]}`)

	report, err := ValidateCompactFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Records)
	assert.Zero(t, report.MissingName)
	assert.Zero(t, report.MissingPrimaryID)
}

func TestValidateCountsBadRecords(t *testing.T) {
	path := writeCompact(t, `{"metadata":{},"drugs":[
		{"name":"Aspirin","drugbank_ids":{"primary":"DB00945","secondary":[]}},
		{"drugbank_ids":{"primary":"DB01050","secondary":[]}},
		{"name":"","drugbank_ids":{"primary":"DB09999","secondary":[]}},
		{"name":"Orphan","drugbank_ids":{"primary":null,"secondary":[]}},
		{"name":"NoIDs"}
	]}`)

	report, err := ValidateCompactFile(path)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Records)
	assert.Equal(t, 2, report.MissingName)
	assert.Equal(t, 2, report.MissingPrimaryID)
}

func TestValidateEmptyDrugs(t *testing.T) {
	path := writeCompact(t, `{"metadata":{},"drugs":[]}`)

	report, err := ValidateCompactFile(path)
	require.NoError(t, err)
	assert.Zero(t, report.Records)
}

func TestValidateMissingMetadata(t *testing.T) {
	path := writeCompact(t, `{"drugs":[]}`)

	_, err := ValidateCompactFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata")
}

func TestValidateMissingFile(t *testing.T) {
	_, err := ValidateCompactFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestValidateBrokenDrugsShape(t *testing.T) {
	path := writeCompact(t, `{"metadata":{},"drugs":"oops"}`)

	_, err := ValidateCompactFile(path)
	require.Error(t, err)
}
