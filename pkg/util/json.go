package util

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PrintPrettyJSON prints v as indented JSON without HTML escaping, so URLs
// and ids in the output stay copy/pasteable.
func PrintPrettyJSON(v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	fmt.Print(buf.String())
	return nil
}
