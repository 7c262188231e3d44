package config

import (
	"fmt"
	"strings"
)

// Profile parameterizes the generic monitoring pipeline for one booking site:
// where it lives, how to log in, what to ignore, and how to reach the user.
type Profile struct {
	Name        string
	DisplayName string
	EnvPrefix   string

	BookingURL string
	LoginURLs  []string

	// Visible text that superficially matches a booking control but never is
	// one (container titles, legend entries, state words).
	FalsePositives []string

	// Email-to-SMS gateway domains, tried in order. The phone number is
	// prepended to form the destination address.
	CarrierGateways  []string
	UniversalGateway string

	SMTPHost string
	SMTPPort int
}

var profiles = map[string]Profile{
	"BTC": {
		Name:        "BTC",
		DisplayName: "Burnaby Tennis Club",
		EnvPrefix:   "BTC",
		BookingURL:  "https://www.burnabytennis.ca/app/bookings/grid",
		LoginURLs: []string{
			"https://www.burnabytennis.ca/login",
			"https://www.burnabytennis.ca/signin",
			"https://www.burnabytennis.ca/auth/login",
			"https://www.burnabytennis.ca/user/login",
		},
		FalsePositives: []string{
			"Booking Grid", "None", "N/A", "disabled",
			"unavailable", "closed", "maintenance",
		},
		CarrierGateways: []string{
			"pcs.rogers.com", "txt.bell.ca", "msg.telus.com",
			"fido.ca", "vmobile.ca", "msg.koodomobile.com",
		},
		UniversalGateway: "txt.att.net",
		SMTPHost:         "smtp.gmail.com",
		SMTPPort:         587,
	},
	"UBC": {
		Name:        "UBC",
		DisplayName: "UBC Tennis Centre",
		EnvPrefix:   "UBC",
		BookingURL:  "https://www.recreation.ubc.ca/tennis/",
		LoginURLs: []string{
			"https://www.recreation.ubc.ca/login",
		},
		FalsePositives: []string{
			"Booking Grid", "None", "N/A", "disabled",
			"unavailable", "closed", "maintenance",
		},
		CarrierGateways: []string{
			"pcs.rogers.com", "txt.bell.ca", "msg.telus.com",
			"fido.ca", "vmobile.ca", "msg.koodomobile.com",
		},
		UniversalGateway: "txt.att.net",
		SMTPHost:         "smtp.gmail.com",
		SMTPPort:         587,
	},
}

// ProfileFor looks up the facility profile by name, case-insensitively.
func ProfileFor(facility string) (Profile, error) {
	p, ok := profiles[strings.ToUpper(strings.TrimSpace(facility))]
	if !ok {
		return Profile{}, fmt.Errorf("unsupported facility %q (supported: BTC, UBC)", facility)
	}
	return p, nil
}

// GatewayAddresses builds the ordered email-to-SMS destination list for a
// phone number, ending with the universal gateway as a last resort.
func (p Profile) GatewayAddresses(phone string) []string {
	phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")
	if phone == "" {
		return nil
	}
	addrs := make([]string, 0, len(p.CarrierGateways)+1)
	for _, domain := range p.CarrierGateways {
		addrs = append(addrs, phone+"@"+domain)
	}
	if p.UniversalGateway != "" {
		addrs = append(addrs, phone+"@"+p.UniversalGateway)
	}
	return addrs
}
