package domain

import (
	"net/url"
	"strings"
)

const (
	// whatsAppBase is the click-to-chat endpoint.
	whatsAppBase = "https://wa.me/"

	// CountryCodeBR is prefixed to national numbers that lack a country code.
	CountryCodeBR = "55"

	// minAddressableDigits is the shortest number we will address directly:
	// a two-digit area code plus an eight-digit subscriber number.
	minAddressableDigits = 10
)

// NormalizeDigits strips everything but decimal digits from a raw
// user-entered phone number.
func NormalizeDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ShareLink is the outcome of building a WhatsApp share target.
type ShareLink struct {
	// URL is the complete click-to-chat link.
	URL string `json:"url"`

	// Phone is the normalized, country-prefixed number the link addresses,
	// empty when the link is un-addressed.
	Phone string `json:"phone,omitempty"`

	// Addressed reports whether the link targets a specific number. When
	// false the user picks the destination inside WhatsApp.
	Addressed bool `json:"addressed"`
}

// WhatsAppLink builds a share link for the given raw phone number and
// message body. Numbers with at least ten digits are addressed directly,
// gaining the Brazilian country code when it is not already present; any
// shorter input degrades to an un-addressed link carrying only the text.
// This never fails: a missing or unusable number is not an error.
func WhatsAppLink(rawPhone, body string) ShareLink {
	text := url.QueryEscape(body)
	digits := NormalizeDigits(rawPhone)

	if len(digits) < minAddressableDigits {
		return ShareLink{URL: whatsAppBase + "?text=" + text}
	}

	phone := digits
	if !strings.HasPrefix(phone, CountryCodeBR) {
		phone = CountryCodeBR + phone
	}
	return ShareLink{
		URL:       whatsAppBase + phone + "?text=" + text,
		Phone:     phone,
		Addressed: true,
	}
}
