package enums

import "fmt"

// CheckoutStep tracks the wizard position of a checkout session. The step is
// in-memory state only; abandoning the session loses it.
type CheckoutStep int

const (
	CheckoutStepAddress CheckoutStep = iota + 1
	CheckoutStepPaymentMethod
	CheckoutStepPlaceOrder
	CheckoutStepPayment
)

var checkoutStepNames = map[CheckoutStep]string{
	CheckoutStepAddress:       "address",
	CheckoutStepPaymentMethod: "payment_method",
	CheckoutStepPlaceOrder:    "place_order",
	CheckoutStepPayment:       "payment",
}

// String implements fmt.Stringer.
func (s CheckoutStep) String() string {
	if name, ok := checkoutStepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// IsValid reports whether the value is a known CheckoutStep.
func (s CheckoutStep) IsValid() bool {
	_, ok := checkoutStepNames[s]
	return ok
}
