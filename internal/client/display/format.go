package display

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON writes v to w as indented JSON
func WriteJSON(w io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%sError formatting JSON: %s%s\n", Red, err.Error(), Reset)
		return
	}
	fmt.Fprintln(w, string(data))
}

// IndentJSON re-indents a raw JSON payload. Anything that is not JSON comes back unchanged.
func IndentJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// StorageState colors the storage status reported by /health
func StorageState(state string) string {
	switch state {
	case "ok":
		return Green + state + Reset
	case "degraded":
		return Red + state + Reset
	default:
		return Yellow + state + Reset
	}
}
