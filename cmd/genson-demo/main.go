// Command genson-demo infers and prints a schema for a small embedded batch
// of JSON documents, and then normalises the same batch against it. It
// takes no flags and reads no files — a runnable illustration of the
// package API, not a tool.
package main

import (
	"fmt"
	"log"

	"github.com/go-json-experiment/json"

	"github.com/lmmx/genson-go"
)

var sampleBatch = []string{
	`{"id": 1, "name": "alpha", "tags": ["a", "b"]}`,
	`{"id": 2, "name": "beta", "tags": ["b"], "note": "seen twice"}`,
	`{"id": 3, "name": "gamma", "tags": []}`,
}

func main() {
	cfg := genson.DefaultConfig()

	result, err := genson.Infer(sampleBatch, cfg)
	if err != nil {
		log.Fatalf("infer: %v", err)
	}

	schemaJSON, err := json.Marshal(result.Schema, json.Deterministic(true))
	if err != nil {
		log.Fatalf("marshal schema: %v", err)
	}
	fmt.Printf("inferred schema (%d documents):\n%s\n\n", result.ProcessedCount, schemaJSON)

	values, err := genson.ParseBatch(sampleBatch, cfg)
	if err != nil {
		log.Fatalf("parse batch: %v", err)
	}
	normalised, err := genson.Normalise(values, result.Schema, cfg)
	if err != nil {
		log.Fatalf("normalise: %v", err)
	}
	for i, row := range normalised {
		rowJSON, err := json.Marshal(row, json.Deterministic(true))
		if err != nil {
			log.Fatalf("marshal row %d: %v", i, err)
		}
		fmt.Printf("row %d: %s\n", i, rowJSON)
	}
}
