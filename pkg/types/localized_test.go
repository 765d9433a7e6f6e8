package types

import "testing"

func TestLocalizedTextResolve(t *testing.T) {
	name := LocalizedText{"en": "Roasted Coffee", "am": "የተጠበሰ ቡና"}

	if got := name.Resolve("am"); got != "የተጠበሰ ቡና" {
		t.Fatalf("expected amharic entry, got %q", got)
	}
	if got := name.Resolve("om"); got != "Roasted Coffee" {
		t.Fatalf("expected english fallback, got %q", got)
	}
	if got := name.Resolve(""); got != "Roasted Coffee" {
		t.Fatalf("expected english fallback for empty lang, got %q", got)
	}
}

func TestLocalizedTextResolveWithoutEnglish(t *testing.T) {
	name := LocalizedText{"am": "ሽንኩርት"}
	if got := name.Resolve("ti"); got != "ሽንኩርት" {
		t.Fatalf("expected any available entry, got %q", got)
	}

	var empty LocalizedText
	if got := empty.Resolve("en"); got != "" {
		t.Fatalf("expected empty string for nil map, got %q", got)
	}
}
