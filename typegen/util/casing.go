package util

import (
	"strings"
	"unicode"
)

// ToPascalCase converts snake_case, kebab-case or camelCase to PascalCase.
// "phoneNumber" -> "PhoneNumber", "home_address" -> "HomeAddress"
func ToPascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			// Capitalize first letter, keep rest as-is
			runes := []rune(part)
			result.WriteRune(unicode.ToUpper(runes[0]))
			result.WriteString(string(runes[1:]))
		}
	}

	return result.String()
}

// ToIdentifier replaces every rune that cannot appear in an identifier
// with an underscore, and prefixes one if s starts with a digit.
// "my-schema.v2" -> "my_schema_v2"
func ToIdentifier(s string) string {
	var result strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
			result.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				result.WriteRune('_')
			}
			result.WriteRune(r)
		default:
			result.WriteRune('_')
		}
	}
	return result.String()
}
