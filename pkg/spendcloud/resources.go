package spendcloud

import (
	"context"
	"net/url"

	"github.com/spendcloudtools/spendlink/pkg/extract"
)

// Ref identifies a resource to fetch: the tenant, its environment and the
// resource id.
type Ref struct {
	Tenant string
	Dev    bool
	ID     string
}

// CardDetails are the normalized identifiers of a card.
type CardDetails struct {
	CardID              string `json:"cardId,omitempty"`
	PaymentInstrumentID string `json:"paymentInstrumentId,omitempty"`
	BalanceAccountID    string `json:"balanceAccountId,omitempty"`
	AdministrationID    string `json:"administrationId,omitempty"`
	Vendor              string `json:"vendor,omitempty"`
}

// BookDetails are the normalized identifiers of a book.
type BookDetails struct {
	BalanceAccountID string `json:"balanceAccountId,omitempty"`
	AdministrationID string `json:"administrationId,omitempty"`
}

// AdministrationDetails are the normalized identifiers of an administration.
type AdministrationDetails struct {
	AdministrationID string `json:"administrationId,omitempty"`
	BalanceAccountID string `json:"balanceAccountId,omitempty"`
}

// BalanceAccountDetails are the normalized identifiers of a balance account.
type BalanceAccountDetails struct {
	BalanceAccountID string `json:"balanceAccountId,omitempty"`
}

// EntryDetails are the normalized identifiers of a book entry.
type EntryDetails struct {
	EntryID          string `json:"entryId,omitempty"`
	AdministrationID string `json:"administrationId,omitempty"`
	TransferID       string `json:"transferId,omitempty"`
}

func resourcePath(resource, id string) string {
	return "/api/" + resource + "/" + url.PathEscape(id)
}

// FetchCard fetches a card and extracts its cross-referenced identifiers.
func (c *Client) FetchCard(ctx context.Context, ref Ref) (*CardDetails, error) {
	body, err := c.Get(ctx, ref.Tenant, ref.Dev, resourcePath("cards", ref.ID))
	if err != nil {
		return nil, err
	}
	f := extract.Card(body)
	return &CardDetails{
		CardID:              f.CardID,
		PaymentInstrumentID: f.PaymentInstrumentID,
		BalanceAccountID:    f.BalanceAccountID,
		AdministrationID:    f.AdministrationID,
		Vendor:              f.Vendor,
	}, nil
}

// FetchBook fetches a book and extracts its cross-referenced identifiers.
func (c *Client) FetchBook(ctx context.Context, ref Ref) (*BookDetails, error) {
	body, err := c.Get(ctx, ref.Tenant, ref.Dev, resourcePath("books", ref.ID))
	if err != nil {
		return nil, err
	}
	f := extract.Book(body)
	return &BookDetails{
		BalanceAccountID: f.BalanceAccountID,
		AdministrationID: f.AdministrationID,
	}, nil
}

// FetchAdministration fetches an administration and extracts its identifiers.
func (c *Client) FetchAdministration(ctx context.Context, ref Ref) (*AdministrationDetails, error) {
	body, err := c.Get(ctx, ref.Tenant, ref.Dev, resourcePath("administrations", ref.ID))
	if err != nil {
		return nil, err
	}
	f := extract.Administration(body)
	return &AdministrationDetails{
		AdministrationID: f.AdministrationID,
		BalanceAccountID: f.BalanceAccountID,
	}, nil
}

// FetchBalanceAccount fetches a balance account and extracts its identifiers.
func (c *Client) FetchBalanceAccount(ctx context.Context, ref Ref) (*BalanceAccountDetails, error) {
	body, err := c.Get(ctx, ref.Tenant, ref.Dev, resourcePath("balance-accounts", ref.ID))
	if err != nil {
		return nil, err
	}
	f := extract.BalanceAccount(body)
	return &BalanceAccountDetails{
		BalanceAccountID: f.BalanceAccountID,
	}, nil
}

// FetchEntry fetches a book entry and extracts its identifiers.
func (c *Client) FetchEntry(ctx context.Context, ref Ref) (*EntryDetails, error) {
	body, err := c.Get(ctx, ref.Tenant, ref.Dev, resourcePath("entries", ref.ID))
	if err != nil {
		return nil, err
	}
	f := extract.Entry(body)
	return &EntryDetails{
		EntryID:          f.EntryID,
		AdministrationID: f.AdministrationID,
		TransferID:       f.TransferID,
	}, nil
}
