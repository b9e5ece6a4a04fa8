// Package links builds URLs into the external payment-platform dashboard for
// resources cross-referenced from spend.cloud.
package links

import "net/url"

const (
	liveBase = "https://balanceplatform-live.adyen.com/balanceplatform"
	testBase = "https://balanceplatform-test.adyen.com/balanceplatform"
)

func base(test bool) string {
	if test {
		return testBase
	}
	return liveBase
}

// BalanceAccount returns the dashboard page for a balance account.
func BalanceAccount(id string, test bool) string {
	return base(test) + "/balance-accounts/" + url.PathEscape(id)
}

// PaymentInstrument returns the dashboard page for a payment instrument.
func PaymentInstrument(id string, test bool) string {
	return base(test) + "/payment-instruments/" + url.PathEscape(id)
}

// Transfer returns the dashboard page for a transfer.
func Transfer(id string, test bool) string {
	return base(test) + "/transfers/" + url.PathEscape(id)
}
