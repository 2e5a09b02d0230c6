package protocol

// IsValidCallbackName reports whether name is safe to interpolate into a
// synthesized call expression. The grammar is deliberately strict: first
// character [A-Za-z_$], the rest [A-Za-z0-9_$.]. Anything that could break
// out of `name(payload);` (parentheses, quotes, whitespace, braces) fails.
// A reply addressed to an invalid name is dropped, never repaired.
func IsValidCallbackName(name string) bool {
	if len(name) == 0 {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c == '_' || c == '$':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		case c == '.':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
