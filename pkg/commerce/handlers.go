package commerce

import (
	"context"

	"github.com/dmitrymomot/courier/pkg/notify"
)

// Handler codes. Each is also the default template name.
const (
	CodeOrderConfirmation       = "order-confirmation"
	CodeOrderPartiallyShipped   = "order-partially-shipped"
	CodeOrderShipped            = "order-shipped"
	CodeOrderPartiallyDelivered = "order-partially-delivered"
	CodeOrderDelivered          = "order-delivered"
	CodeEmailVerification       = "email-verification"
	CodePasswordReset           = "password-reset"
	CodeEmailAddressChange      = "email-address-change"
)

// DefaultFrom is the sender template of every default handler. Set the
// fromAddress global template var to use it.
const DefaultFrom = "{{ .fromAddress }}"

// ShippingLoader returns the shipping lines of an order with their methods resolved.
type ShippingLoader interface {
	ShippingLines(ctx context.Context, order Order) ([]ShippingLine, error)
}

// ShippingLoaderFunc adapts a function to ShippingLoader.
type ShippingLoaderFunc func(ctx context.Context, order Order) ([]ShippingLine, error)

func (f ShippingLoaderFunc) ShippingLines(ctx context.Context, order Order) ([]ShippingLine, error) {
	return f(ctx, order)
}

// ShippingData is the loader result of the order handlers.
type ShippingData struct {
	Lines []ShippingLine
}

type options struct {
	shipping ShippingLoader
	from     string
}

// Option configures the default handlers.
type Option func(*options)

// WithShippingLoader sets where shipping lines come from. By default the
// lines already on the order are used.
func WithShippingLoader(l ShippingLoader) Option {
	return func(o *options) {
		o.shipping = l
	}
}

// WithFrom replaces the sender template of every handler.
func WithFrom(tmpl string) Option {
	return func(o *options) {
		if tmpl != "" {
			o.from = tmpl
		}
	}
}

// Handlers returns the default storefront handlers, ready for Registry.Register.
func Handlers(opts ...Option) []notify.Handler {
	o := options{from: DefaultFrom}
	for _, opt := range opts {
		opt(&o)
	}

	return []notify.Handler{
		orderConfirmation(o),
		emailVerification(o),
		passwordResetRequested(o),
		emailAddressChange(o),
		orderPartiallyShipped(o),
		orderShipped(o),
		orderPartiallyDelivered(o),
		orderDelivered(o),
	}
}

// hydrateShipping keeps only the shipping lines with a known method.
func (o options) hydrateShipping(ctx context.Context, order Order) (ShippingData, error) {
	lines := order.ShippingLines
	if o.shipping != nil {
		var err error
		if lines, err = o.shipping.ShippingLines(ctx, order); err != nil {
			return ShippingData{}, err
		}
	}

	out := make([]ShippingLine, 0, len(lines))
	for _, l := range lines {
		if l.MethodName != "" {
			out = append(out, l)
		}
	}
	return ShippingData{Lines: out}, nil
}

func hasCustomer(o Order) bool {
	return o.Customer != nil && o.Customer.EmailAddress != ""
}

// orderDefinition is the shared shape of the order state handlers.
func orderDefinition(o options, code, subject string) notify.Definition[OrderStateTransition, ShippingData] {
	return notify.Define[OrderStateTransition, ShippingData](code).
		Filter(func(e OrderStateTransition) bool { return hasCustomer(e.Order) }).
		LoadData(func(ctx context.Context, e OrderStateTransition) (ShippingData, error) {
			return o.hydrateShipping(ctx, e.Order)
		}).
		SetRecipient(func(p notify.Payload[OrderStateTransition, ShippingData]) string {
			return p.Event.Order.Customer.EmailAddress
		}).
		SetFrom(o.from).
		SetSubject(subject).
		SetTemplateVars(func(p notify.Payload[OrderStateTransition, ShippingData], _ map[string]any) map[string]any {
			return map[string]any{
				"order":         orderData(p.Event.Order, p.Data.Lines),
				"shippingLines": shippingData(p.Data.Lines),
			}
		}).
		SetMockEvent(MockOrderStateTransition())
}

// fulfillmentDefinition is the shared shape of the fulfillment handlers.
func fulfillmentDefinition(o options, code, subject string) notify.Definition[FulfillmentStateTransition, ShippingData] {
	return notify.Define[FulfillmentStateTransition, ShippingData](code).
		Filter(func(e FulfillmentStateTransition) bool { return hasCustomer(e.Order) }).
		LoadData(func(ctx context.Context, e FulfillmentStateTransition) (ShippingData, error) {
			return o.hydrateShipping(ctx, e.Order)
		}).
		SetRecipient(func(p notify.Payload[FulfillmentStateTransition, ShippingData]) string {
			return p.Event.Order.Customer.EmailAddress
		}).
		SetFrom(o.from).
		SetSubject(subject).
		SetTemplateVars(func(p notify.Payload[FulfillmentStateTransition, ShippingData], _ map[string]any) map[string]any {
			return map[string]any{
				"order":         orderData(p.Event.Order, p.Data.Lines),
				"fulfillment":   fulfillmentData(p.Event.Fulfillment),
				"shippingLines": shippingData(p.Data.Lines),
			}
		}).
		SetMockEvent(MockFulfillmentStateTransition())
}

// orderConfirmation is sent once payment settles, except after an order modification.
func orderConfirmation(o options) notify.Definition[OrderStateTransition, ShippingData] {
	return orderDefinition(o, CodeOrderConfirmation, "Order confirmation for #{{ .order.code }}").
		Filter(func(e OrderStateTransition) bool {
			return e.ToState == StatePaymentSettled && e.FromState != StateModifying
		})
}

// orderShipped is sent when the whole order ships at once.
func orderShipped(o options) notify.Definition[OrderStateTransition, ShippingData] {
	return orderDefinition(o, CodeOrderShipped, "Your order #{{ .order.code }} has shipped").
		Filter(func(e OrderStateTransition) bool {
			return e.ToState == StateShipped && e.FromState != StatePartiallyShipped
		}).
		SetMockEvent(withOrderStates(MockOrderStateTransition(), StatePaymentSettled, StateShipped))
}

// orderDelivered is sent when the order is delivered.
func orderDelivered(o options) notify.Definition[OrderStateTransition, ShippingData] {
	return orderDefinition(o, CodeOrderDelivered, "Your order #{{ .order.code }} has been delivered").
		Filter(func(e OrderStateTransition) bool { return e.ToState == StateDelivered }).
		SetMockEvent(withOrderStates(MockOrderStateTransition(), StateShipped, StateDelivered))
}

// orderPartiallyShipped is sent for every shipped fulfillment.
func orderPartiallyShipped(o options) notify.Definition[FulfillmentStateTransition, ShippingData] {
	return fulfillmentDefinition(o, CodeOrderPartiallyShipped, "Items from your order #{{ .order.code }} have shipped").
		Filter(func(e FulfillmentStateTransition) bool { return e.ToState == StateShipped })
}

// orderPartiallyDelivered is sent for every delivered fulfillment.
func orderPartiallyDelivered(o options) notify.Definition[FulfillmentStateTransition, ShippingData] {
	return fulfillmentDefinition(o, CodeOrderPartiallyDelivered, "Items from your order #{{ .order.code }} have been delivered").
		Filter(func(e FulfillmentStateTransition) bool { return e.ToState == StateDelivered }).
		SetMockEvent(withFulfillmentStates(MockFulfillmentStateTransition(), StateShipped, StateDelivered))
}

// emailVerification asks a new customer to confirm the address they registered with.
func emailVerification(o options) notify.Definition[AccountRegistration, notify.NoData] {
	return notify.On[AccountRegistration](CodeEmailVerification).
		Filter(func(e AccountRegistration) bool {
			return e.User.Native != nil && e.User.Native.Identifier != ""
		}).
		SetRecipient(func(p notify.Payload[AccountRegistration, notify.NoData]) string {
			return p.Event.User.Identifier
		}).
		SetFrom(o.from).
		SetSubject("Please verify your email address").
		SetTemplateVars(func(p notify.Payload[AccountRegistration, notify.NoData], _ map[string]any) map[string]any {
			return map[string]any{"verificationToken": p.Event.User.Native.VerificationToken}
		}).
		SetMockEvent(MockAccountRegistration())
}

// passwordResetRequested sends the password reset link.
func passwordResetRequested(o options) notify.Definition[PasswordReset, notify.NoData] {
	return notify.On[PasswordReset](CodePasswordReset).
		Filter(func(e PasswordReset) bool { return e.User.Native != nil }).
		SetRecipient(func(p notify.Payload[PasswordReset, notify.NoData]) string {
			return p.Event.User.Identifier
		}).
		SetFrom(o.from).
		SetSubject("Forgotten password reset").
		SetTemplateVars(func(p notify.Payload[PasswordReset, notify.NoData], _ map[string]any) map[string]any {
			return map[string]any{"passwordResetToken": p.Event.User.Native.PasswordResetToken}
		}).
		SetMockEvent(MockPasswordReset())
}

// emailAddressChange asks the user to confirm the new address; it goes to
// the pending identifier.
func emailAddressChange(o options) notify.Definition[IdentifierChangeRequest, notify.NoData] {
	return notify.On[IdentifierChangeRequest](CodeEmailAddressChange).
		Filter(func(e IdentifierChangeRequest) bool { return e.User.Native != nil }).
		SetRecipient(func(p notify.Payload[IdentifierChangeRequest, notify.NoData]) string {
			return p.Event.User.Native.PendingIdentifier
		}).
		SetFrom(o.from).
		SetSubject("Please verify your change of email address").
		SetTemplateVars(func(p notify.Payload[IdentifierChangeRequest, notify.NoData], _ map[string]any) map[string]any {
			return map[string]any{"identifierChangeToken": p.Event.User.Native.IdentifierChangeToken}
		}).
		SetMockEvent(MockIdentifierChangeRequest())
}
