// Package extension implements the extension data model: name sanitization,
// manifest construction, skeleton materialization, and directory listing.
package extension

import "regexp"

// disallowedNameChars matches every character that may not appear in an
// extension directory leaf.
var disallowedNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SanitizeName removes every character outside {A-Z, a-z, 0-9, hyphen,
// underscore} from a raw extension name, preserving the order of the
// remaining characters. The result may be empty; callers must validate
// non-emptiness before using it as a directory leaf.
func SanitizeName(raw string) string {
	return disallowedNameChars.ReplaceAllString(raw, "")
}
