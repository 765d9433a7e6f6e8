package enums

import "testing"

func TestParsePaymentMethod(t *testing.T) {
	for _, method := range validPaymentMethods {
		parsed, err := ParsePaymentMethod(method.String())
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", method, err)
		}
		if parsed != method {
			t.Fatalf("expected %s, got %s", method, parsed)
		}
	}
	if _, err := ParsePaymentMethod("paypal"); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestParseRegion(t *testing.T) {
	if _, err := ParseRegion("addis_ababa"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseRegion("nairobi"); err == nil {
		t.Fatal("expected error for unknown region")
	}
	if len(Regions()) != len(validRegions) {
		t.Fatal("Regions should return the full enumeration")
	}
}

func TestCheckoutStepString(t *testing.T) {
	if CheckoutStepAddress.String() != "address" {
		t.Fatalf("unexpected name %q", CheckoutStepAddress.String())
	}
	if CheckoutStep(99).IsValid() {
		t.Fatal("expected step 99 to be invalid")
	}
}

func TestParseLanguageAndCurrency(t *testing.T) {
	if _, err := ParseLanguage("am"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseLanguage("fr"); err == nil {
		t.Fatal("expected error for unsupported language")
	}
	if _, err := ParseCurrency("ETB"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseCurrency("KES"); err == nil {
		t.Fatal("expected error for unsupported currency")
	}
}

func TestPaymentStatusValidity(t *testing.T) {
	if !PaymentStatusPaid.IsValid() {
		t.Fatal("paid should be valid")
	}
	if PaymentStatus("settling").IsValid() {
		t.Fatal("unknown status should be invalid")
	}
}
