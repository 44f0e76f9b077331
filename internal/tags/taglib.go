package tags

import (
	"fmt"

	"go.senan.xyz/taglib"
)

// writeTagLib merges values into the file's property map. Keys not in values are kept.
func writeTagLib(path string, values map[string]string) error {
	tags := make(map[string][]string, len(values))
	for k, v := range values {
		tags[k] = []string{v}
	}

	if err := taglib.WriteTags(path, tags, 0); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}
	return nil
}

func readTagLib(path, key string) (string, error) {
	tags, err := taglib.ReadTags(path)
	if err != nil {
		return "", fmt.Errorf("read tags: %w", err)
	}
	if v := tags[key]; len(v) > 0 {
		return v[0], nil
	}
	return "", nil
}
