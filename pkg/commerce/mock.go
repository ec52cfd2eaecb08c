package commerce

import "time"

// Mock events used for previews. Every call returns fresh values.

func mockOrder() Order {
	return Order{
		PlacedAt: time.Date(2024, time.March, 14, 9, 30, 0, 0, time.UTC),
		Customer: &Customer{
			FirstName:    "Jane",
			LastName:     "Doe",
			EmailAddress: "jane.doe@example.com",
		},
		ID:           "ord_01",
		Code:         "T3DX7K2P9ZQ4",
		State:        StatePaymentSettled,
		CurrencyCode: "USD",
		Lines: []OrderLine{
			{ProductName: "Canvas Tote Bag", SKU: "TOTE-NAT", Quantity: 2, UnitPriceWithTax: 1899},
			{ProductName: "Ceramic Mug", SKU: "MUG-WHT", Quantity: 1, UnitPriceWithTax: 1250},
		},
		ShippingLines: []ShippingLine{
			{MethodName: "Standard Shipping", PriceWithTax: 500},
		},
	}
}

func mockUser() User {
	return User{
		ID:         "usr_01",
		Identifier: "jane.doe@example.com",
		Native: &NativeAuth{
			Identifier:            "jane.doe@example.com",
			VerificationToken:     "MOCK_VERIFICATION_TOKEN",
			PasswordResetToken:    "MOCK_PASSWORD_RESET_TOKEN",
			PendingIdentifier:     "jane.new@example.com",
			IdentifierChangeToken: "MOCK_IDENTIFIER_CHANGE_TOKEN",
		},
	}
}

// MockOrderStateTransition returns an order moving to PaymentSettled.
func MockOrderStateTransition() OrderStateTransition {
	return OrderStateTransition{
		Order:     mockOrder(),
		FromState: "ArrangingPayment",
		ToState:   StatePaymentSettled,
	}
}

// MockFulfillmentStateTransition returns a fulfillment moving to Shipped.
func MockFulfillmentStateTransition() FulfillmentStateTransition {
	return FulfillmentStateTransition{
		Fulfillment: Fulfillment{
			ID:           "ful_01",
			Method:       "Standard Shipping",
			TrackingCode: "1Z999AA10123456784",
			State:        StateShipped,
		},
		Order:     mockOrder(),
		FromState: "Pending",
		ToState:   StateShipped,
	}
}

// MockAccountRegistration returns a registration with a native identifier.
func MockAccountRegistration() AccountRegistration {
	return AccountRegistration{User: mockUser()}
}

// MockPasswordReset returns a password reset request.
func MockPasswordReset() PasswordReset {
	return PasswordReset{User: mockUser()}
}

// MockIdentifierChangeRequest returns an email address change request.
func MockIdentifierChangeRequest() IdentifierChangeRequest {
	return IdentifierChangeRequest{User: mockUser()}
}

func withOrderStates(e OrderStateTransition, from, to string) OrderStateTransition {
	e.FromState, e.ToState = from, to
	e.Order.State = to
	return e
}

func withFulfillmentStates(e FulfillmentStateTransition, from, to string) FulfillmentStateTransition {
	e.FromState, e.ToState = from, to
	e.Fulfillment.State = to
	return e
}
