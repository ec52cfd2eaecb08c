package commerce

// Template data projections. Templates see plain maps so the job payload
// survives JSON round trips unchanged.

func orderData(o Order, shipping []ShippingLine) map[string]any {
	lines := make([]map[string]any, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, map[string]any{
			"productName":      l.ProductName,
			"sku":              l.SKU,
			"previewUrl":       l.PreviewURL,
			"quantity":         l.Quantity,
			"unitPriceWithTax": l.UnitPriceWithTax,
			"linePriceWithTax": l.LinePriceWithTax(),
		})
	}

	data := map[string]any{
		"id":            o.ID,
		"code":          o.Code,
		"state":         o.State,
		"currencyCode":  o.CurrencyCode,
		"lines":         lines,
		"subTotal":      o.SubTotal(),
		"shipping":      o.Shipping(),
		"total":         o.Total(),
		"shippingLines": shippingData(shipping),
	}
	if !o.PlacedAt.IsZero() {
		data["placedAt"] = o.PlacedAt
	}
	if c := o.Customer; c != nil {
		data["customer"] = map[string]any{
			"firstName":    c.FirstName,
			"lastName":     c.LastName,
			"emailAddress": c.EmailAddress,
		}
	}
	return data
}

func shippingData(lines []ShippingLine) []map[string]any {
	out := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		out = append(out, map[string]any{
			"methodName":   l.MethodName,
			"priceWithTax": l.PriceWithTax,
		})
	}
	return out
}

func fulfillmentData(f Fulfillment) map[string]any {
	return map[string]any{
		"id":           f.ID,
		"method":       f.Method,
		"trackingCode": f.TrackingCode,
		"state":        f.State,
	}
}
