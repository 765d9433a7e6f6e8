package types

import "strings"

// FallbackLanguage is used when a localized string has no entry for the
// requested language.
const FallbackLanguage = "en"

// LocalizedText maps ISO language codes to display strings. Catalog payloads
// carry at least the English entry.
type LocalizedText map[string]string

// Resolve returns the text for the requested language, falling back to
// English and then to any available entry.
func (t LocalizedText) Resolve(lang string) string {
	if len(t) == 0 {
		return ""
	}
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang != "" {
		if val, ok := t[lang]; ok && val != "" {
			return val
		}
	}
	if val, ok := t[FallbackLanguage]; ok && val != "" {
		return val
	}
	for _, val := range t {
		if val != "" {
			return val
		}
	}
	return ""
}
