package handler

import (
	"fmt"
	"strconv"
)

// parseIdParam parses a positive integer path parameter.
func parseIdParam(param string, paramName string) (int64, error) {
	val, err := strconv.ParseInt(param, 10, 64)
	if err != nil || val <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", paramName)
	}
	return val, nil
}
