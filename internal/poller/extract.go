package poller

import (
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// ValidateExpression checks a JMESPath expression before a submission
// starts, so a typo fails fast instead of after twenty minutes.
func ValidateExpression(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return fmt.Errorf("invalid extract expression %q: %w", expr, err)
	}
	return nil
}

// Extract evaluates a JMESPath expression against a resolved result,
// for callers that only want one field out of a structured payload
// (an image URL, a script list). An empty expression returns the
// decoded result unchanged.
func Extract(result json.RawMessage, expr string) (any, error) {
	var decoded any
	if len(result) > 0 {
		if err := json.Unmarshal(result, &decoded); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
	}

	if strings.TrimSpace(expr) == "" {
		return decoded, nil
	}

	value, err := jmespath.Search(expr, decoded)
	if err != nil {
		return nil, fmt.Errorf("evaluate extract expression %q: %w", expr, err)
	}
	return value, nil
}
