package itsi

import (
	"encoding/json"

	splunkerr "github.com/itsiops/splunk-itsi-mcp-server/internal/errors"
)

// IndexesPath is the Splunk endpoint listing configured indexes
const IndexesPath = "/services/data/indexes"

// ParseIndexNames shapes an index-listing response into index names,
// preserving source order. Zero indexes is an empty slice, not an error.
func ParseIndexNames(body []byte) ([]string, error) {
	var parsed struct {
		Entry []struct {
			Name string `json:"name"`
		} `json:"entry"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, splunkerr.NewParseError(err)
	}

	names := make([]string, 0, len(parsed.Entry))
	for _, entry := range parsed.Entry {
		names = append(names, entry.Name)
	}
	return names, nil
}
