package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cryptogift/ledger/internal/shared/errors"
	"github.com/cryptogift/ledger/internal/shared/id"
)

// ParseSIDParam parses and validates a Stripe-style prefixed ID from a URL path parameter.
// paramName is the Gin route parameter name (e.g., "id", "rule_id").
// prefix is the expected SID prefix (e.g., id.PrefixReferral).
// entityName is used in error messages (e.g., "referral").
func ParseSIDParam(c *gin.Context, paramName, prefix, entityName string) (string, error) {
	sid := c.Param(paramName)
	if sid == "" {
		return "", errors.NewValidationError(entityName + " ID is required")
	}

	if err := id.ValidatePrefix(sid, prefix); err != nil {
		return "", errors.NewValidationError(
			fmt.Sprintf("invalid %s ID format, expected %s_xxxxx", entityName, prefix),
		)
	}

	return sid, nil
}

var walletParamPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// ParseAddressParam reads a wallet address path parameter and returns it lower-cased.
func ParseAddressParam(c *gin.Context, paramName string) (string, error) {
	address := strings.TrimSpace(c.Param(paramName))
	if address == "" {
		return "", errors.NewValidationError("wallet address is required")
	}
	if !walletParamPattern.MatchString(address) {
		return "", errors.NewValidationError("invalid wallet address format, expected 0x followed by 40 hex characters")
	}
	return strings.ToLower(address), nil
}

// ParseLimitQuery reads a positive integer query parameter, falling back to
// def when absent and clamping to max.
func ParseLimitQuery(c *gin.Context, name string, def, max int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.NewValidationError(fmt.Sprintf("%s must be a positive integer", name))
	}
	if n > max {
		n = max
	}
	return n, nil
}
