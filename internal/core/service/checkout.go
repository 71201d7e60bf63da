package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/eclypse/storefront/internal/core/domain"
	"github.com/eclypse/storefront/internal/core/port"
)

// A CheckoutConfig is taken verbatim: a zero fee or rate is a valid
// policy, not a request for the defaults.
type CheckoutConfig struct {
	FreeShippingThreshold float64
	ShippingFee           float64
	TaxRate               float64
	ProcessingDelay       time.Duration
}

// DefaultCheckoutConfig carries the storefront's standard pricing policy.
func DefaultCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{
		FreeShippingThreshold: 50,
		ShippingFee:           5.99,
		TaxRate:               0.23,
	}
}

// local-part@domain, no whitespace
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)

// A Checkout walks the order placement steps:
// shipping -> payment -> review -> submitting -> confirmed.
// Backward transitions payment->shipping and review->payment are allowed;
// forward transitions require the step's validation to pass.
type Checkout struct {
	mu       sync.Mutex
	cfg      CheckoutConfig
	cart     *Cart
	ledger   *StockLedger
	orders   port.OrderEventsProducer
	stockEvt port.StockEventsProducer
	step     domain.CheckoutStep
	shipping domain.ShippingInfo
	payment  domain.PaymentForm
}

func NewCheckout(
	cfg CheckoutConfig,
	cart *Cart,
	ledger *StockLedger,
	orders port.OrderEventsProducer,
	stockEvt port.StockEventsProducer,
) *Checkout {
	return &Checkout{
		cfg:      cfg,
		cart:     cart,
		ledger:   ledger,
		orders:   orders,
		stockEvt: stockEvt,
		step:     domain.StepShipping,
	}
}

func (c *Checkout) Step() domain.CheckoutStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Reset returns the machine to the shipping step and drops entered forms.
func (c *Checkout) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.step = domain.StepShipping
	c.shipping = domain.ShippingInfo{}
	c.payment = domain.PaymentForm{}
}

// SubmitShipping validates the shipping form and advances to payment.
func (c *Checkout) SubmitShipping(f domain.ShippingInfo) error {
	const op = "Checkout.SubmitShipping"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != domain.StepShipping {
		return fmt.Errorf("%s: step %q: %w", op, c.step, domain.ErrInvalidStep)
	}
	if err := validateShipping(f); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if f.Country == "" {
		f.Country = "Portugal"
	}
	c.shipping = f
	c.step = domain.StepPayment
	return nil
}

// SubmitPayment validates the payment form and advances to review.
func (c *Checkout) SubmitPayment(f domain.PaymentForm) error {
	const op = "Checkout.SubmitPayment"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != domain.StepPayment {
		return fmt.Errorf("%s: step %q: %w", op, c.step, domain.ErrInvalidStep)
	}
	if err := validatePayment(f); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.payment = f
	c.step = domain.StepReview
	return nil
}

// Back moves one step backward: payment->shipping or review->payment.
func (c *Checkout) Back() error {
	const op = "Checkout.Back"

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.step {
	case domain.StepPayment:
		c.step = domain.StepShipping
	case domain.StepReview:
		c.step = domain.StepPayment
	default:
		return fmt.Errorf("%s: step %q: %w", op, c.step, domain.ErrInvalidStep)
	}
	return nil
}

// Quote computes the current order totals: free shipping above the
// threshold, flat fee below, tax on the subtotal.
func (c *Checkout) Quote() domain.Totals {
	subtotal := c.cart.Total()

	var shipping float64
	if subtotal < c.cfg.FreeShippingThreshold {
		shipping = c.cfg.ShippingFee
	}
	tax := round2(subtotal * c.cfg.TaxRate)

	return domain.Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    round2(subtotal + shipping + tax),
	}
}

// PlaceOrder runs review -> submitting -> confirmed: waits through the
// simulated processing delay, purchases stock for every line atomically,
// clears the cart and emits the order event. A second call while
// submitting fails with domain.ErrSubmitting, so a double-click yields
// exactly one order. Context cancellation during the delay discards the
// submission and returns the machine to review.
func (c *Checkout) PlaceOrder(ctx context.Context) (domain.Order, error) {
	const op = "Checkout.PlaceOrder"
	log := slog.With("op", op)

	if err := c.beginSubmit(); err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.processingDelay(ctx); err != nil {
		c.rollbackToReview()
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	lines := c.cart.Lines()
	items := make(map[string]int, len(lines))
	for _, l := range lines {
		items[l.Product.ProductID] = l.Quantity
	}
	if err := c.ledger.PurchaseBatch(items); err != nil {
		c.rollbackToReview()
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	order := c.buildOrder(lines)

	if err := c.cart.Clear(ctx); err != nil {
		log.Warn("failed to persist cleared cart", "err", err)
	}

	c.emitEvents(ctx, order, lines)

	c.mu.Lock()
	c.step = domain.StepConfirmed
	c.mu.Unlock()

	log.Info("order confirmed", "orderID", order.OrderID, "total", order.Totals.Total)
	return order, nil
}

func (c *Checkout) beginSubmit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.step {
	case domain.StepSubmitting:
		return domain.ErrSubmitting
	case domain.StepReview:
	default:
		return fmt.Errorf("step %q: %w", c.step, domain.ErrInvalidStep)
	}
	if c.cart.ItemCount() == 0 {
		return domain.ErrEmptyCart
	}
	c.step = domain.StepSubmitting
	return nil
}

func (c *Checkout) rollbackToReview() {
	c.mu.Lock()
	c.step = domain.StepReview
	c.mu.Unlock()
}

func (c *Checkout) processingDelay(ctx context.Context) error {
	if c.cfg.ProcessingDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.cfg.ProcessingDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Checkout) buildOrder(lines []domain.CartLine) domain.Order {
	now := time.Now()

	c.mu.Lock()
	shipping := c.shipping
	payment := c.payment
	c.mu.Unlock()

	return domain.Order{
		OrderID:   fmt.Sprintf("ORD-%d", now.UnixMilli()),
		CreatedAt: now,
		Shipping:  shipping,
		Payment:   toDescriptor(payment),
		Lines:     lines,
		Totals:    c.Quote(),
		Status:    "confirmed",
	}
}

func (c *Checkout) emitEvents(ctx context.Context, order domain.Order, lines []domain.CartLine) {
	const op = "Checkout.emitEvents"
	log := slog.With("op", op)

	if err := c.orders.ProduceOrder(ctx, order); err != nil {
		log.Error("failed to produce order event", "err", err)
	}

	adjustments := make([]domain.StockAdjustment, 0, len(lines))
	for _, l := range lines {
		adjustments = append(adjustments, domain.StockAdjustment{
			ProductID:     l.Product.ProductID,
			QuantityDelta: -l.Quantity,
			SoldDelta:     l.Quantity,
		})
	}
	if err := c.stockEvt.ProduceAdjustments(ctx, adjustments); err != nil {
		log.Error("failed to produce stock adjustments", "err", err)
	}
}

func toDescriptor(f domain.PaymentForm) domain.PaymentDescriptor {
	d := domain.PaymentDescriptor{Method: f.Method}
	if f.Method == domain.PaymentMethodCard {
		digits := cardDigits(f.CardNumber)
		d.CardBrand = cardBrand(digits)
		if len(digits) >= 4 {
			d.CardLast4 = digits[len(digits)-4:]
		}
	}
	return d
}

func validateShipping(f domain.ShippingInfo) error {
	errs := domain.ValidationError{}

	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Nome é obrigatório"
	}
	switch {
	case strings.TrimSpace(f.Email) == "":
		errs["email"] = "Email é obrigatório"
	case !emailPattern.MatchString(f.Email):
		errs["email"] = "Email inválido"
	}
	if strings.TrimSpace(f.Phone) == "" {
		errs["phone"] = "Telefone é obrigatório"
	}
	if strings.TrimSpace(f.Address) == "" {
		errs["address"] = "Morada é obrigatória"
	}
	if strings.TrimSpace(f.City) == "" {
		errs["city"] = "Cidade é obrigatória"
	}
	if strings.TrimSpace(f.PostalCode) == "" {
		errs["postalCode"] = "Código postal é obrigatório"
	}

	if len(errs) != 0 {
		return errs
	}
	return nil
}

func validatePayment(f domain.PaymentForm) error {
	// PayPal branch carries no fields to validate.
	if f.Method != domain.PaymentMethodCard {
		return nil
	}

	errs := domain.ValidationError{}

	digits := cardDigits(f.CardNumber)
	switch {
	case digits == "":
		errs["cardNumber"] = "Número do cartão é obrigatório"
	case len(digits) < 16:
		errs["cardNumber"] = "Número do cartão inválido"
	}
	if f.ExpiryDate == "" {
		errs["expiryDate"] = "Data de validade é obrigatória"
	}
	if f.CVV == "" {
		errs["cvv"] = "CVV é obrigatório"
	}
	if strings.TrimSpace(f.CardName) == "" {
		errs["cardName"] = "Nome no cartão é obrigatório"
	}

	if len(errs) != 0 {
		return errs
	}
	return nil
}

func cardDigits(number string) string {
	return strings.ReplaceAll(strings.TrimSpace(number), " ", "")
}

func cardBrand(digits string) string {
	switch {
	case strings.HasPrefix(digits, "4"):
		return "Visa"
	case strings.HasPrefix(digits, "5"):
		return "Mastercard"
	case strings.HasPrefix(digits, "3"):
		return "American Express"
	default:
		return "Cartão"
	}
}
