package manifest

import "regexp"

var decimalPattern = regexp.MustCompile(`-?\d+\.\d+`)

// SanitizeNumeric extracts every signed decimal substring from value. When
// nothing matches, value is returned unchanged as the only element. More than
// one match means the input was corrupted upstream; callers use the first.
func SanitizeNumeric(value string) []string {
	matches := decimalPattern.FindAllString(value, -1)
	if len(matches) == 0 {
		return []string{value}
	}
	return matches
}
