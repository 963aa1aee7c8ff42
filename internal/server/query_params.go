package server

import (
	"strconv"
	"strings"
)

const defaultPageSize = 50

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parsePageSize accepts 1..250 and defaults when empty.
func parsePageSize(value string) (int32, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultPageSize, nil
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 32)
	if err != nil || parsed <= 0 || parsed > 250 {
		return 0, newValidationError("page_size", "invalid_page_size", "invalid page size")
	}
	return int32(parsed), nil
}
