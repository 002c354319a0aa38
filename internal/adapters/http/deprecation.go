package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeprecatedRoute marks an endpoint as deprecated with sunset date.
type DeprecatedRoute struct {
	Method      string    // empty matches any method
	Path        string    // route pattern, ":name" segments match anything
	SunsetDate  time.Time // Date when endpoint will be removed
	Alternative string    // successor endpoint (optional)
}

// DeprecationMiddleware adds Deprecation, Sunset, Link and Warning headers
// (RFC 8594, RFC 8288) to deprecated endpoints.
func DeprecationMiddleware(deprecated []DeprecatedRoute) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, d := range deprecated {
			if d.Method != "" && d.Method != c.Method() {
				continue
			}
			if !matchPattern(c.Path(), d.Path) {
				continue
			}
			c.Set("Deprecation", "true")
			c.Set("Sunset", d.SunsetDate.UTC().Format(time.RFC1123))
			if d.Alternative != "" {
				c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, d.Alternative))
			}
			days := time.Until(d.SunsetDate).Hours() / 24
			c.Set("Warning", fmt.Sprintf(`299 - "Deprecated API, will sunset in %.0f days"`, days))
			break
		}
		return c.Next()
	}
}

// matchPattern matches a path against a route pattern segment by segment.
func matchPattern(path, pattern string) bool {
	if path == pattern {
		return true
	}
	ps := strings.Split(strings.Trim(path, "/"), "/")
	qs := strings.Split(strings.Trim(pattern, "/"), "/")
	if len(ps) != len(qs) {
		return false
	}
	for i := range qs {
		if strings.HasPrefix(qs[i], ":") {
			if ps[i] == "" {
				return false
			}
			continue
		}
		if qs[i] != ps[i] {
			return false
		}
	}
	return true
}
