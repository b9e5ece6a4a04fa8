// Package extract pulls cross-referenced identifiers out of the JSON:API
// payloads served by spend.cloud. The upstream has returned the same field
// under several shapes over the years (top-level vs data.attributes,
// relationship ids vs attribute ids, legacy snake_case vs camelCase), so each
// field is an ordered table of candidate paths and the first usable value
// wins. Extractors never fail; a total miss yields an empty string.
package extract

import (
	"strings"

	"github.com/tidwall/gjson"
)

// usable rejects missing values and the placeholder values the upstream emits
// where it means "nothing": null, "0", "" and "false", case-insensitively.
func usable(v gjson.Result) bool {
	if !v.Exists() || v.Type == gjson.Null {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v.String())) {
	case "", "0", "null", "false":
		return false
	}
	return true
}

// First returns the first defined, non-placeholder value among the candidate
// paths, or "" when every path misses.
func First(body []byte, paths ...string) string {
	for _, p := range paths {
		if v := gjson.GetBytes(body, p); usable(v) {
			return v.String()
		}
	}
	return ""
}

// Candidate paths shared by several resources.
var (
	balanceAccountPaths = []string{
		"data.relationships.balanceAccount.data.id",
		"data.attributes.adyenBalanceAccountId",
		"data.attributes.adyen_balance_account_id",
		"data.attributes.balanceAccountId",
		"balanceAccountId",
	}
	administrationPaths = []string{
		"data.relationships.administration.data.id",
		"data.attributes.administrationId",
		"data.attributes.administration_id",
		"administrationId",
	}
)

// CardFields are the identifiers cross-referenced from a card payload.
type CardFields struct {
	CardID              string
	PaymentInstrumentID string
	BalanceAccountID    string
	AdministrationID    string
	Vendor              string
}

var (
	cardIDPaths = []string{
		"data.id",
		"data.attributes.cardId",
		"data.attributes.card_id",
		"cardId",
	}
	paymentInstrumentPaths = []string{
		"data.attributes.adyenPaymentInstrumentId",
		"data.attributes.adyen_payment_instrument_id",
		"data.relationships.paymentInstrument.data.id",
		"paymentInstrumentId",
	}
	cardVendorPaths = []string{
		"data.attributes.vendor",
		"data.attributes.cardVendor",
		"vendor",
	}
)

// Card extracts card identifiers from a card payload.
func Card(body []byte) CardFields {
	return CardFields{
		CardID:              First(body, cardIDPaths...),
		PaymentInstrumentID: First(body, paymentInstrumentPaths...),
		BalanceAccountID:    First(body, balanceAccountPaths...),
		AdministrationID:    First(body, administrationPaths...),
		Vendor:              First(body, cardVendorPaths...),
	}
}

// BookFields are the identifiers cross-referenced from a book payload.
type BookFields struct {
	BalanceAccountID string
	AdministrationID string
}

// Book extracts book identifiers from a book payload.
func Book(body []byte) BookFields {
	return BookFields{
		BalanceAccountID: First(body, balanceAccountPaths...),
		AdministrationID: First(body, administrationPaths...),
	}
}

// AdministrationFields are the identifiers cross-referenced from an
// administration payload.
type AdministrationFields struct {
	AdministrationID string
	BalanceAccountID string
}

var administrationIDPaths = []string{
	"data.id",
	"data.attributes.administrationId",
	"data.attributes.administration_id",
	"administrationId",
}

// Administration extracts administration identifiers.
func Administration(body []byte) AdministrationFields {
	return AdministrationFields{
		AdministrationID: First(body, administrationIDPaths...),
		BalanceAccountID: First(body, balanceAccountPaths...),
	}
}

// BalanceAccountFields are the identifiers cross-referenced from a balance
// account payload.
type BalanceAccountFields struct {
	BalanceAccountID string
}

var balanceAccountIDPaths = []string{
	"data.attributes.adyenBalanceAccountId",
	"data.attributes.adyen_balance_account_id",
	"data.id",
	"balanceAccountId",
}

// BalanceAccount extracts balance account identifiers.
func BalanceAccount(body []byte) BalanceAccountFields {
	return BalanceAccountFields{
		BalanceAccountID: First(body, balanceAccountIDPaths...),
	}
}

// EntryFields are the identifiers cross-referenced from a book entry payload.
type EntryFields struct {
	EntryID          string
	AdministrationID string
	TransferID       string
}

var (
	entryIDPaths = []string{
		"data.id",
		"entryId",
	}
	transferPaths = []string{
		"data.attributes.adyenTransferId",
		"data.attributes.adyen_transfer_id",
		"data.relationships.transfer.data.id",
		"transferId",
	}
)

// Entry extracts book entry identifiers.
func Entry(body []byte) EntryFields {
	return EntryFields{
		EntryID:          First(body, entryIDPaths...),
		AdministrationID: First(body, administrationPaths...),
		TransferID:       First(body, transferPaths...),
	}
}
