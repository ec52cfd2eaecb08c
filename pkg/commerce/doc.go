// Package commerce provides the default storefront notification handlers and
// their templates.
//
// It covers order confirmation, shipping and delivery updates, and the account
// emails for address verification, password reset and address change:
//
//	registry := notify.NewRegistry(notify.WithGlobalTemplateVars(map[string]any{
//		"fromAddress":           `"Shop" <noreply@shop.example>`,
//		"verifyEmailAddressUrl": "https://shop.example/verify",
//		"passwordResetUrl":      "https://shop.example/reset-password",
//		"changeEmailAddressUrl": "https://shop.example/verify-email-change",
//	}))
//	if err := registry.Register(commerce.Handlers()...); err != nil {
//		return err
//	}
//
//	store, err := commerce.Templates()
//
// Handlers match on event type, so any service can publish the events in this
// package. Order events need a customer with an email address; account events
// need a native identity.
//
// Shipping lines are read from the order unless WithShippingLoader is given.
// Lines without a method name are left out of the email.
package commerce
