package cli

import (
	"encoding/json"
	"io"
)

// printJSON writes v to w as indented JSON, one document per call.
func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ") // pretty print
	return encoder.Encode(v)
}
