// Package notify turns domain events into serializable email jobs.
//
// A Definition declares, for one event type, which events produce an email
// (filters), what extra data to load, and how to resolve the recipient, sender,
// subject, template vars, attachments and optional addresses. Definitions are
// registered in a Registry, which matches incoming events by runtime type.
//
// # Usage
//
//	confirmation := notify.Define[OrderEvent, []Line]("order-confirmation").
//		Filter(func(e OrderEvent) bool { return e.ToState == "PaymentSettled" }).
//		LoadData(func(ctx context.Context, e OrderEvent) ([]Line, error) {
//			return lines.ForOrder(ctx, e.OrderID)
//		}).
//		SetRecipient(func(p notify.Payload[OrderEvent, []Line]) string {
//			return p.Event.CustomerEmail
//		}).
//		SetFrom("{{ .fromAddress }}").
//		SetSubject("Order confirmation for #{{ .order.code }}").
//		SetTemplateVars(func(p notify.Payload[OrderEvent, []Line], _ map[string]any) map[string]any {
//			return map[string]any{"order": p.Event.Order, "lines": p.Data}
//		})
//
//	reg := notify.NewRegistry(notify.WithGlobalTemplateVars(map[string]any{
//		"fromAddress": `"Shop" <noreply@example.com>`,
//	}))
//	if err := reg.Register(confirmation); err != nil {
//		return err
//	}
//
//	jobs, err := reg.Dispatch(ctx, event)
//
// Dispatch returns the jobs of every definition that succeeded even when
// others failed; failures are joined *HandlerError values.
//
// # Jobs
//
// A Job holds only plain data. Template vars are reduced to what their JSON
// encoding exposes, so domain types that want derived values (a computed total,
// a display name) in templates expose them through MarshalJSON. The request
// context travels inside the job as an opaque encoded value.
package notify
