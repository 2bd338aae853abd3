package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-cycling/internal/usecase"
)

func readImportFile(path string) ([]usecase.ImportInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	inputs, err := decodeImportInputs(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return inputs, nil
}

// decodeImportInputs accepts a single result set object or an array of them.
func decodeImportInputs(raw []byte) ([]usecase.ImportInput, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	dec := sonic.ConfigDefault.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	if raw[0] == '[' {
		var out []usecase.ImportInput
		if err := dec.Decode(&out); err != nil {
			return nil, err
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("no result sets")
		}
		return out, nil
	}

	var one usecase.ImportInput
	if err := dec.Decode(&one); err != nil {
		return nil, err
	}
	return []usecase.ImportInput{one}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := sonic.ConfigDefault.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
