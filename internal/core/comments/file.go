package comments

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a flat JSON array of threads from disk. A missing path
// yields an empty batch, keeping startup quiet when nothing was shared.
func LoadFile(path string) ([]Thread, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read threads file: %w", err)
	}

	var threads []Thread
	if err := json.Unmarshal(data, &threads); err != nil {
		return nil, fmt.Errorf("parse threads file %s: %w", path, err)
	}
	return threads, nil
}
