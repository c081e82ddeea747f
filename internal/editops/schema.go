package editops

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaLoader     gojsonschema.JSONLoader
	schemaLoaderErr  error
	schemaLoaderOnce sync.Once
)

// Schema returns the JSON schema for an operation batch as a generic map.
func Schema() (map[string]any, error) {
	var schema map[string]any
	if err := json.Unmarshal(schemaJSON, &schema); err != nil {
		return nil, fmt.Errorf("editops: decode schema: %w", err)
	}
	return schema, nil
}

func loadSchema() (gojsonschema.JSONLoader, error) {
	schemaLoaderOnce.Do(func() {
		schemaMap, err := Schema()
		if err != nil {
			schemaLoaderErr = err
			return
		}
		schemaLoader = gojsonschema.NewGoLoader(schemaMap)
	})
	if schemaLoaderErr != nil {
		return nil, schemaLoaderErr
	}
	return schemaLoader, nil
}
