package cache

import "fmt"

// Key pattern: courtly:{module}:{identifier}
const prefix = "courtly"

// RuleSetKey is the cached pricing rule set for a court (court-scoped plus
// facility-wide rules).
func RuleSetKey(courtID string) string {
	return fmt.Sprintf("%s:pricing:rules:%s", prefix, courtID)
}

// RuleSetPattern matches every cached rule set, used on rule mutation.
func RuleSetPattern() string {
	return prefix + ":pricing:rules:*"
}

// CourtKey is the cached metadata for a single court.
func CourtKey(courtID string) string {
	return fmt.Sprintf("%s:resources:court:%s", prefix, courtID)
}
