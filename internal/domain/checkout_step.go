package domain

type Step string

const (
	StepInformation  Step = "information"
	StepShipping     Step = "shipping"
	StepPayment      Step = "payment"
	StepReview       Step = "review"
	StepConfirmation Step = "confirmation"
)

var stepOrder = []Step{StepInformation, StepShipping, StepPayment, StepReview, StepConfirmation}

func (s Step) index() int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

func (s Step) Valid() bool {
	return s.index() >= 0
}

func (s Step) IsTerminal() bool {
	return s == StepConfirmation
}

// Next returns the following step, or false for confirmation.
func (s Step) Next() (Step, bool) {
	i := s.index()
	if i < 0 || i+1 >= len(stepOrder) {
		return s, false
	}
	return stepOrder[i+1], true
}

// Previous returns the preceding step. Only shipping, payment and review can go back.
func (s Step) Previous() (Step, bool) {
	switch s {
	case StepShipping, StepPayment, StepReview:
		return stepOrder[s.index()-1], true
	default:
		return s, false
	}
}

// CanTransitionTo allows moving exactly one step forward, or one step back
// from shipping, payment or review.
func CanTransitionTo(from, to Step) bool {
	if next, ok := from.Next(); ok && next == to {
		return true
	}
	if prev, ok := from.Previous(); ok && prev == to {
		return true
	}
	return false
}

// AtOrAfter reports whether s has reached other in the linear order.
func (s Step) AtOrAfter(other Step) bool {
	return s.index() >= other.index()
}

// String representation (for logging)
func (s Step) String() string {
	return string(s)
}

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit-card"
	PaymentMpesa          PaymentMethod = "mpesa"
	PaymentPayPal         PaymentMethod = "paypal"
	PaymentBankTransfer   PaymentMethod = "bank-transfer"
	PaymentCashOnDelivery PaymentMethod = "cash-on-delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentMpesa, PaymentPayPal, PaymentBankTransfer, PaymentCashOnDelivery:
		return true
	}
	return false
}
