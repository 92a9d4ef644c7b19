package main

import (
	"encoding/json"
	"fmt"
	"os"

	symbiosisapi "github.com/ShaduMan201/symbiosis/pkg/symbiosis"
)

func loadOrDefaultEvolveRequest(configPath string) (symbiosisapi.EvolveRequest, error) {
	if configPath == "" {
		return symbiosisapi.EvolveRequest{}, nil
	}
	req, err := loadEvolveRequestFromConfig(configPath)
	if err != nil {
		return symbiosisapi.EvolveRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func loadEvolveRequestFromConfig(path string) (symbiosisapi.EvolveRequest, error) {
	raw, err := readConfig(path)
	if err != nil {
		return symbiosisapi.EvolveRequest{}, err
	}

	var req symbiosisapi.EvolveRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asComposition(raw["composition"]); ok {
		req.Composition = v
	}
	if v, ok := asString(raw["pairing"]); ok {
		req.Pairing = v
	}
	if v, ok := asInt(raw["rounds"]); ok {
		req.Rounds = v
	}
	if v, ok := asFloat64(raw["noise"]); ok {
		req.Noise = v
	}
	if v, ok := asFloat64(raw["mutation_rate"]); ok {
		req.MutationRate = v
	}
	if v, ok := asInt(raw["elimination"]); ok {
		req.Elimination = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Generations = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	return req, nil
}

func loadOrDefaultBatchRequest(configPath string) (symbiosisapi.BatchRequest, error) {
	if configPath == "" {
		return symbiosisapi.BatchRequest{}, nil
	}
	req, err := loadBatchRequestFromConfig(configPath)
	if err != nil {
		return symbiosisapi.BatchRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func loadBatchRequestFromConfig(path string) (symbiosisapi.BatchRequest, error) {
	raw, err := readConfig(path)
	if err != nil {
		return symbiosisapi.BatchRequest{}, err
	}

	var req symbiosisapi.BatchRequest
	if v, ok := asString(raw["experiment_id"]); ok {
		req.ExperimentID = v
	}
	if v, ok := asInt(raw["runs"]); ok {
		req.Runs = v
	}
	if v, ok := asComposition(raw["composition"]); ok {
		req.Composition = v
	}
	if v, ok := asString(raw["pairing"]); ok {
		req.Pairing = v
	}
	if v, ok := asInt(raw["rounds"]); ok {
		req.Rounds = v
	}
	if v, ok := asFloat64(raw["noise"]); ok {
		req.Noise = v
	}
	if v, ok := asFloat64(raw["mutation_rate"]); ok {
		req.MutationRate = v
	}
	if v, ok := asInt(raw["elimination"]); ok {
		req.Elimination = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Generations = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	return req, nil
}

func readConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func asComposition(v any) (map[string]int, bool) {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	composition := make(map[string]int, len(raw))
	for name, value := range raw {
		count, ok := asInt(value)
		if !ok {
			return nil, false
		}
		composition[name] = count
	}
	return composition, true
}
