package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImportInputs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		raw     string
		sets    int
		wantErr bool
	}{
		{
			name: "single object",
			raw:  `{"gender":"M","category":"elite","discipline":"XCO","isFinal":true,"results":[{"riderId":"m1","status":"FIN","position":1}]}`,
			sets: 1,
		},
		{
			name: "array",
			raw:  `[{"gender":"M","category":"elite","discipline":"XCO"},{"gender":"F","category":"elite","discipline":"XCO"}]`,
			sets: 2,
		},
		{name: "empty", raw: "  ", wantErr: true},
		{name: "empty array", raw: "[]", wantErr: true},
		{name: "unknown field", raw: `{"gender":"M","laps":5}`, wantErr: true},
		{name: "malformed", raw: `{"gender":`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := decodeImportInputs([]byte(tc.raw))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tc.sets)
		})
	}
}

func TestDecodeImportInputs_KeepsPositions(t *testing.T) {
	t.Parallel()

	got, err := decodeImportInputs([]byte(`{"gender":"F","category":"elite","discipline":"XCO","results":[{"riderId":"f1","status":"DNS"},{"riderId":"f2","status":"FIN","position":3}]}`))
	require.NoError(t, err)
	require.Len(t, got[0].Results, 2)
	assert.Nil(t, got[0].Results[0].Position)
	require.NotNil(t, got[0].Results[1].Position)
	assert.Equal(t, 3, *got[0].Results[1].Position)
}

func TestReadImportFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, demoResults, 0o600))

	got, err := readImportFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = readImportFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, newSweepLine("race-1", nil, errors.New("boom"))))
	assert.JSONEq(t, `{"raceId":"race-1","error":"boom"}`, buf.String())
}
