package checkout

import "github.com/fjod/go_cart/storefront/internal/domain"

// guard validates what must hold before leaving step. A nil result lets the step advance.
func guard(s *Session, step domain.Step) *ValidationError {
	switch step {
	case domain.StepInformation:
		missing := blank(
			field{"firstName", s.Contact.FirstName},
			field{"lastName", s.Contact.LastName},
			field{"email", s.Contact.Email},
			field{"phone", s.Contact.Phone},
			field{"address", s.ShippingAddress.Address},
			field{"city", s.ShippingAddress.City},
			field{"postalCode", s.ShippingAddress.PostalCode},
		)
		if len(missing) > 0 {
			return &ValidationError{Step: step, Fields: missing, Message: MsgRequiredFields}
		}
	case domain.StepPayment:
		if s.PaymentDetails == nil || s.PaymentDetails.Method() != s.PaymentMethod {
			return &ValidationError{Step: step, Fields: []string{"paymentMethod"}, Message: MsgInvalidPayment}
		}
		if missing := s.PaymentDetails.missing(); len(missing) > 0 {
			return &ValidationError{Step: step, Fields: missing, Message: MsgRequiredFields}
		}
	case domain.StepReview:
		if !s.AcceptedTerms {
			return &ValidationError{Step: step, Fields: []string{"acceptedTerms"}, Message: MsgAcceptTerms}
		}
	}
	return nil
}

// guardAll re-checks every step up to and including upTo. Earlier answers can be
// edited after their step was passed, so placement validates all of them again.
func guardAll(s *Session, upTo domain.Step) *ValidationError {
	for _, step := range []domain.Step{domain.StepInformation, domain.StepShipping, domain.StepPayment, domain.StepReview} {
		if err := guard(s, step); err != nil {
			return err
		}
		if step == upTo {
			break
		}
	}
	return nil
}
