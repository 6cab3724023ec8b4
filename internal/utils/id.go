package utils

import (
	"fmt"
	"strconv"
)

// ParseID validates and parses an entity id from a path or form value.
func ParseID(value string) (uint, error) {
	id, err := strconv.ParseUint(value, 10, 32)

	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}

	return uint(id), nil
}

// FormatID renders an entity id the way assignee lists store it.
func FormatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
