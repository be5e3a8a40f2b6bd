package checkout

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
)

var validate = validator.New()

// ValidateStep reports whether the form data for step is complete.
func ValidateStep(form entity.CheckoutForm, step Step) bool {
	switch step {
	case StepShipping:
		return validate.Struct(form.Shipping) == nil
	case StepBilling:
		if form.Billing.SameAsShipping {
			return true
		}
		return validate.Struct(form.Billing.Address) == nil
	case StepPayment:
		return validPayment(form.Payment)
	default:
		return false
	}
}

func validPayment(p entity.PaymentInfo) bool {
	switch p.Method {
	case entity.PaymentCard:
		card := p.Card
		card.Number = strings.ReplaceAll(card.Number, " ", "")
		return validate.Struct(card) == nil
	case entity.PaymentUPI:
		return strings.Contains(p.UPIID, "@")
	case entity.PaymentCOD:
		return true
	default:
		return false
	}
}
