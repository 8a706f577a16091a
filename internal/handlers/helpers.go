package handlers

import (
	"fmt"
	"strconv"

	"github.com/asaskevich/govalidator"
)

// MaxQueryRunes is the longest accepted search query.
const MaxQueryRunes = 100

// parseIndexParam parses a non-negative history position.
func parseIndexParam(param string) (int, error) {
	parsed, err := strconv.ParseUint(param, 10, 32)
	if err != nil {
		return 0, err
	}
	return int(parsed), nil
}

// parseAIParam reads the ai query flag. A missing flag means AI mode.
func parseAIParam(value string) (bool, error) {
	if value == "" {
		return true, nil
	}
	aiMode, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid ai flag %q", value)
	}
	return aiMode, nil
}

// validateQuery rejects queries longer than MaxQueryRunes.
func validateQuery(query string) error {
	if !govalidator.RuneLength(query, "0", strconv.Itoa(MaxQueryRunes)) {
		return fmt.Errorf("query must be at most %d characters", MaxQueryRunes)
	}
	return nil
}
