package config

import (
	"os"
	"strings"
)

// StrictUnitItemMatch rejects price reports whose unit belongs to a different item than the
// reported item. Off by default: the stored schema does not tie unit_id to item_id.
//
// Set via env:
// - STRICT_UNIT_ITEM_MATCH=true
func StrictUnitItemMatch() bool {
	return envBool("STRICT_UNIT_ITEM_MATCH")
}

// SkipMigrations disables AutoMigrate on server startup.
func SkipMigrations() bool {
	return envBool("SKIP_MIGRATIONS")
}

// PriceExportMaxRows bounds the xlsx export (PRICE_EXPORT_MAX_ROWS, default 5000).
func PriceExportMaxRows() int {
	n := intFromEnv("PRICE_EXPORT_MAX_ROWS", 5000)
	if n <= 0 {
		return 5000
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
