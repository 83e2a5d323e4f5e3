package delivery

import (
	"fmt"
	"net/url"
)

// Deep-link construction is part of the core contract; launching the URL is
// the platform's job.

// PaymentLink builds a transfer deep link for the payment app.
func PaymentLink(recipient, amount, currency, memo string) string {
	v := url.Values{}
	v.Set("recipient", recipient)
	v.Set("amount", amount)
	v.Set("currency", currency)
	if memo != "" {
		v.Set("memo", memo)
	}
	return "suripay://transfer?" + v.Encode()
}

// NavigationLink builds a routing deep link. Coordinates take precedence
// over the free-text destination when both are present.
func NavigationLink(destination, lat, lon, mode string) string {
	v := url.Values{}
	if lat != "" && lon != "" {
		v.Set("coords", fmt.Sprintf("%s,%s", lat, lon))
	}
	v.Set("destination", destination)
	if mode != "" {
		v.Set("mode", mode)
	}
	return "surimap://route?" + v.Encode()
}

// ShoppingLink builds a product search deep link for wishlist items.
func ShoppingLink(productName, targetPrice string) string {
	v := url.Values{}
	v.Set("q", productName)
	if targetPrice != "" {
		v.Set("target_price", targetPrice)
	}
	return "surishop://search?" + v.Encode()
}

// CommunicationLink builds a compose deep link per transport.
func CommunicationLink(commType, recipient, template string) string {
	v := url.Values{}
	v.Set("to", recipient)
	if template != "" {
		v.Set("body", template)
	}
	switch commType {
	case "email":
		return "mailto:" + url.QueryEscape(recipient) + "?body=" + url.QueryEscape(template)
	case "sms":
		return "sms:" + url.QueryEscape(recipient) + "?body=" + url.QueryEscape(template)
	case "call":
		return "tel:" + url.QueryEscape(recipient)
	default:
		return "surichat://compose?" + v.Encode()
	}
}
