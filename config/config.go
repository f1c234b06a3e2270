// Package config loads the chain parameter set (core.Params) from JSON,
// the way the teacher's node config loads node settings: a typed default,
// a Load that validates, and a Save that round-trips it.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tolelom/ledgercore/core"
)

// Load reads a JSON parameter file from path, overlaying it on
// core.DefaultParams, and validates the result.
func Load(path string) (*core.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	params := core.DefaultParams()
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("params validation: %w", err)
	}
	return &params, nil
}

// Save writes params to path as formatted JSON.
func Save(params core.Params, path string) error {
	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
