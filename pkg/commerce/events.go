package commerce

import (
	"time"

	"github.com/dmitrymomot/courier/pkg/notify"
)

// Order states used by the default handlers.
const (
	StatePaymentSettled   = "PaymentSettled"
	StateModifying        = "Modifying"
	StatePartiallyShipped = "PartiallyShipped"
	StateShipped          = "Shipped"
	StateDelivered        = "Delivered"
)

// Customer is the buyer of an order.
type Customer struct {
	FirstName    string
	LastName     string
	EmailAddress string
}

// OrderLine is one product line. Prices are in minor units.
type OrderLine struct {
	ProductName      string
	SKU              string
	PreviewURL       string
	Quantity         int
	UnitPriceWithTax int64
}

// LinePriceWithTax returns the line total.
func (l OrderLine) LinePriceWithTax() int64 {
	return int64(l.Quantity) * l.UnitPriceWithTax
}

// ShippingLine is a shipping charge. MethodName is empty until the shipping
// method is known.
type ShippingLine struct {
	MethodName   string
	PriceWithTax int64
}

// Order is the order as seen by notification handlers.
type Order struct {
	PlacedAt      time.Time
	Customer      *Customer
	ID            string
	Code          string
	State         string
	CurrencyCode  string
	Lines         []OrderLine
	ShippingLines []ShippingLine
}

// SubTotal returns the sum of the order lines.
func (o Order) SubTotal() int64 {
	var sum int64
	for _, l := range o.Lines {
		sum += l.LinePriceWithTax()
	}
	return sum
}

// Shipping returns the sum of the shipping lines.
func (o Order) Shipping() int64 {
	var sum int64
	for _, l := range o.ShippingLines {
		sum += l.PriceWithTax
	}
	return sum
}

// Total returns the amount charged for the order.
func (o Order) Total() int64 {
	return o.SubTotal() + o.Shipping()
}

// Fulfillment is a shipment of some or all order lines.
type Fulfillment struct {
	ID           string
	Method       string
	TrackingCode string
	State        string
}

// NativeAuth is the password-based authentication method of a user.
type NativeAuth struct {
	Identifier            string
	VerificationToken     string
	PasswordResetToken    string
	PendingIdentifier     string
	IdentifierChangeToken string
}

// User is a storefront account.
type User struct {
	Native     *NativeAuth
	ID         string
	Identifier string
}

// Request carries the request context of the action that raised an event.
type Request struct {
	Context notify.RequestContext
}

// RequestContext implements notify.ContextCarrier.
func (r Request) RequestContext() notify.RequestContext {
	return r.Context
}

// OrderStateTransition is raised when an order changes state.
type OrderStateTransition struct {
	Request
	Order     Order
	FromState string
	ToState   string
}

// FulfillmentStateTransition is raised when a fulfillment of Order changes state.
type FulfillmentStateTransition struct {
	Request
	Fulfillment Fulfillment
	Order       Order
	FromState   string
	ToState     string
}

// AccountRegistration is raised when a customer registers.
type AccountRegistration struct {
	Request
	User User
}

// PasswordReset is raised when a user asks for a password reset.
type PasswordReset struct {
	Request
	User User
}

// IdentifierChangeRequest is raised when a user asks to change their email address.
type IdentifierChangeRequest struct {
	Request
	User User
}
