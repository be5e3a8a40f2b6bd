// Package checkout drives the three-step shipping, billing and payment flow
// and gates order submission on each step's validator.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
)

var (
	ErrStepInvalid          = errors.New("checkout step is incomplete")
	ErrNotAtPayment         = errors.New("checkout is not at the payment step")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
	ErrAlreadySubmitted     = errors.New("order already submitted")
	ErrEmptyCart            = errors.New("cart is empty")
)

// Step is a position in the checkout flow.
type Step int

const (
	StepShipping Step = iota + 1
	StepBilling
	StepPayment
)

func (s Step) String() string {
	switch s {
	case StepShipping:
		return "shipping"
	case StepBilling:
		return "billing"
	case StepPayment:
		return "payment"
	default:
		return "unknown"
	}
}

// Outcome is the result of the last submission attempt.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeSubmitted Outcome = "submitted"
	OutcomeFailed    Outcome = "failed"
)

// Cart is the part of the cart store the machine reads and clears.
type Cart interface {
	Items() []entity.LineItem
	Breakdown(method entity.PaymentMethod) entity.PricingBreakdown
	Clear()
}

// Submission is everything the order boundary needs to create an order.
type Submission struct {
	UserID  string
	Items   []entity.LineItem
	Form    entity.CheckoutForm
	Pricing entity.PricingBreakdown
}

// Submitter creates orders. It must not touch the cart.
type Submitter interface {
	SubmitOrder(ctx context.Context, s Submission) (*entity.OrderRecord, error)
}

// Machine is the checkout state machine of one session.
type Machine struct {
	cart      Cart
	submitter Submitter

	mu         sync.Mutex
	step       Step
	form       entity.CheckoutForm
	processing bool
	outcome    Outcome
	lastErr    error
	order      *entity.OrderRecord
}

func NewMachine(cart Cart, submitter Submitter) *Machine {
	return &Machine{
		cart:      cart,
		submitter: submitter,
		step:      StepShipping,
	}
}

// Step returns the current step.
func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// Form returns the form with the billing address resolved.
func (m *Machine) Form() entity.CheckoutForm {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolvedForm()
}

func (m *Machine) SetShipping(info entity.ShippingInfo) error {
	return m.edit(func(f *entity.CheckoutForm) { f.Shipping = info })
}

func (m *Machine) SetBilling(info entity.BillingInfo) error {
	return m.edit(func(f *entity.CheckoutForm) { f.Billing = info })
}

func (m *Machine) SetPayment(info entity.PaymentInfo) error {
	return m.edit(func(f *entity.CheckoutForm) { f.Payment = info })
}

func (m *Machine) edit(fn func(f *entity.CheckoutForm)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.lockedErr(); err != nil {
		return err
	}
	fn(&m.form)
	return nil
}

// Next advances one step if the current step validates. It reports whether
// the step changed.
func (m *Machine) Next() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lockedErr() != nil || m.step >= StepPayment {
		return false
	}
	if !ValidateStep(m.form, m.step) {
		return false
	}
	m.step++
	return true
}

// Back moves one step backwards without validation.
func (m *Machine) Back() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lockedErr() != nil || m.step <= StepShipping {
		return false
	}
	m.step--
	return true
}

// Submit creates the order from the payment step. On success the cart is
// cleared exactly once; on failure the cart is kept and Submit may be retried.
func (m *Machine) Submit(ctx context.Context, userID string) (*entity.OrderRecord, error) {
	m.mu.Lock()
	if err := m.lockedErr(); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if m.step != StepPayment {
		m.mu.Unlock()
		return nil, ErrNotAtPayment
	}
	for _, s := range []Step{StepShipping, StepBilling, StepPayment} {
		if !ValidateStep(m.form, s) {
			m.mu.Unlock()
			return nil, ErrStepInvalid
		}
	}
	items := m.cart.Items()
	if len(items) == 0 {
		m.mu.Unlock()
		return nil, ErrEmptyCart
	}
	form := m.resolvedForm()
	sub := Submission{
		UserID:  userID,
		Items:   items,
		Form:    form,
		Pricing: m.cart.Breakdown(form.Payment.Method),
	}
	m.processing = true
	m.mu.Unlock()

	order, err := m.submitter.SubmitOrder(ctx, sub)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.processing = false
	if err != nil {
		slog.Warn("Checkout: order submission failed", "user_id", userID, "err", err)
		m.outcome = OutcomeFailed
		m.lastErr = err
		return nil, err
	}

	m.outcome = OutcomeSubmitted
	m.lastErr = nil
	m.order = order
	m.cart.Clear()
	return order, nil
}

// Processing reports whether a submission is in flight.
func (m *Machine) Processing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processing
}

// Reset starts a new checkout. It is refused while a submission is in flight.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processing {
		return ErrSubmissionInProgress
	}
	m.step = StepShipping
	m.form = entity.CheckoutForm{}
	m.outcome = OutcomeNone
	m.lastErr = nil
	m.order = nil
	return nil
}

// lockedErr reports why the form cannot change right now. Callers hold mu.
func (m *Machine) lockedErr() error {
	switch {
	case m.processing:
		return ErrSubmissionInProgress
	case m.outcome == OutcomeSubmitted:
		return ErrAlreadySubmitted
	}
	return nil
}

func (m *Machine) resolvedForm() entity.CheckoutForm {
	form := m.form
	if form.Billing.SameAsShipping {
		form.Billing.Address = form.Shipping.PostalAddress()
	}
	return form
}

// State is a serializable view of the machine with card secrets removed.
type State struct {
	Step       Step                `json:"step"`
	StepName   string              `json:"step_name"`
	CanAdvance bool                `json:"can_advance"`
	Processing bool                `json:"processing"`
	Outcome    Outcome             `json:"outcome,omitempty"`
	Error      string              `json:"error,omitempty"`
	Form       entity.CheckoutForm `json:"form"`
	Order      *entity.OrderRecord `json:"order,omitempty"`
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	form := m.resolvedForm()
	form.Payment.Card = redactCard(form.Payment.Card)
	st := State{
		Step:       m.step,
		StepName:   m.step.String(),
		CanAdvance: m.lockedErr() == nil && ValidateStep(m.form, m.step),
		Processing: m.processing,
		Outcome:    m.outcome,
		Form:       form,
		Order:      m.order,
	}
	if m.lastErr != nil {
		st.Error = m.lastErr.Error()
	}
	return st
}

func redactCard(c entity.CardDetails) entity.CardDetails {
	number := strings.ReplaceAll(c.Number, " ", "")
	if n := len(number); n > 4 {
		c.Number = strings.Repeat("*", n-4) + number[n-4:]
	}
	c.CVV = ""
	return c
}
