package stock

import "strings"

// Separator identifies how a secret blob is split into stock units.
type Separator string

// Newline is the only supported separator kind; unknown kinds fall back to it.
const Newline Separator = "newline"

// delimiter maps every kind to "\n" while Newline is the only one.
func (Separator) delimiter() string {
	return "\n"
}

// Split returns the non-blank units of blob in file order.
func Split(blob string, sep Separator) []string {
	if blob == "" {
		return nil
	}
	parts := strings.Split(blob, sep.delimiter())
	units := make([]string, 0, len(parts))
	for _, part := range parts {
		unit := strings.TrimSpace(part)
		if unit == "" {
			continue
		}
		units = append(units, unit)
	}
	return units
}

// Join is the inverse of Split for non-blank, trimmed units.
func Join(units []string, sep Separator) string {
	return strings.Join(units, sep.delimiter())
}

func Count(blob string, sep Separator) int {
	return len(Split(blob, sep))
}

// Take hands out the first n units. The caller checks that n <= len(units).
func Take(units []string, n int) (given, remaining []string) {
	if n > len(units) {
		n = len(units)
	}
	if n < 0 {
		n = 0
	}
	given = append([]string(nil), units[:n]...)
	remaining = append([]string(nil), units[n:]...)
	return given, remaining
}
