package session

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nameRegexp    = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)
	invalidRegexp = regexp.MustCompile(`[^a-z0-9_-]+`)
)

// ValidateName checks that name conforms to session naming rules.
func ValidateName(name string) error {
	if !nameRegexp.MatchString(name) {
		return fmt.Errorf("invalid session name %q: must match ^[a-z0-9_-]{1,64}$", name)
	}
	return nil
}

// NameFromShortcode derives a session name from an organization code so each
// organization gets its own settings and lock. Returns "" when nothing usable
// remains.
func NameFromShortcode(code string) string {
	name := invalidRegexp.ReplaceAllString(strings.ToLower(strings.TrimSpace(code)), "-")
	name = strings.Trim(name, "-")
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}
