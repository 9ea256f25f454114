package compose

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON unmarshals the outermost JSON object embedded in model output.
// Models wrap JSON in prose or code fences often enough that strict parsing
// of the whole response is a losing strategy; slicing from the first '{' to
// the last '}' tolerates both.
func extractJSON(text string, v any) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object found in output")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("malformed JSON in output: %w", err)
	}
	return nil
}
