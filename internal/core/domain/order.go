package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPayPal PaymentMethod = "paypal"
)

type (
	ShippingInfo struct {
		Name       string
		Email      string
		Phone      string
		Address    string
		City       string
		PostalCode string
		Country    string
	}

	// A PaymentForm carries the raw payment step input.
	// Only the descriptor survives into an Order.
	PaymentForm struct {
		Method     PaymentMethod
		CardNumber string
		ExpiryDate string
		CVV        string
		CardName   string
	}

	// A PaymentDescriptor is what an order retains about payment:
	// the method and, for cards, brand and last four digits.
	PaymentDescriptor struct {
		Method    PaymentMethod
		CardBrand string
		CardLast4 string
	}

	Totals struct {
		Subtotal float64
		Shipping float64
		Tax      float64
		Total    float64
	}

	Order struct {
		OrderID   string
		CreatedAt time.Time
		Shipping  ShippingInfo
		Payment   PaymentDescriptor
		Lines     []CartLine
		Totals    Totals
		Status    string
	}
)

type CheckoutStep string

const (
	StepShipping   CheckoutStep = "shipping"
	StepPayment    CheckoutStep = "payment"
	StepReview     CheckoutStep = "review"
	StepSubmitting CheckoutStep = "submitting"
	StepConfirmed  CheckoutStep = "confirmed"
)
