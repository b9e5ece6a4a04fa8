package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/spendcloudtools/spendlink/pkg/capture"
	"github.com/spendcloudtools/spendlink/pkg/health"
	"github.com/spendcloudtools/spendlink/pkg/spendcloud"
	"github.com/spendcloudtools/spendlink/pkg/token"
)

// TokenStore defines the subset of the token store the handlers use.
type TokenStore interface {
	List() ([]token.Record, error)
	Remove(tok string) (bool, error)
	Clear() error
	ShowButtons() (bool, error)
	SetShowButtons(show bool) error
}

// ResourceService defines the subset of the spend.cloud client the handlers
// use.
type ResourceService interface {
	FetchCard(ctx context.Context, ref spendcloud.Ref) (*spendcloud.CardDetails, error)
	FetchBook(ctx context.Context, ref spendcloud.Ref) (*spendcloud.BookDetails, error)
	FetchAdministration(ctx context.Context, ref spendcloud.Ref) (*spendcloud.AdministrationDetails, error)
	FetchBalanceAccount(ctx context.Context, ref spendcloud.Ref) (*spendcloud.BalanceAccountDetails, error)
	FetchEntry(ctx context.Context, ref spendcloud.Ref) (*spendcloud.EntryDetails, error)
}

// Deps carries everything the full handler set needs.
type Deps struct {
	Store     TokenStore
	Resources ResourceService
	Capture   *capture.Interceptor
	Monitor   *health.Monitor
	Logger    *slog.Logger
}

type handlers struct {
	Deps
}

// NewWithHandlers builds a router with the full action set registered.
func NewWithHandlers(deps Deps) *Router {
	r := New(deps.Logger, deps.Monitor)
	h := handlers{Deps: deps}

	r.Register("getAuthTokens", h.getAuthTokens)
	r.Register("reportAuthToken", h.reportAuthToken)
	r.Register("deleteToken", h.deleteToken)
	r.Register("deleteAllTokens", h.deleteAllTokens)

	r.Register("fetchCardDetails", h.fetchCardDetails)
	r.Register("fetchBookDetails", h.fetchBookDetails)
	r.Register("fetchAdministrationDetails", h.fetchAdministrationDetails)
	r.Register("fetchBalanceAccountDetails", h.fetchBalanceAccountDetails)
	r.Register("fetchEntryDetails", h.fetchEntryDetails)

	r.Register("getExtensionHealth", h.getHealth)
	r.Register("getDebugLogs", h.getDebugLogs)
	r.Register("getErrorReports", h.getErrorReports)
	r.Register("exportHealthReport", h.exportHealthReport)

	r.Register("getPreferences", h.getPreferences)
	r.Register("setPreferences", h.setPreferences)

	return r
}

// fields flattens a details struct into response fields via its JSON tags.
func fields(v any) map[string]any {
	out := map[string]any{}
	bs, err := json.Marshal(v)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(bs, &out)
	return out
}

func (h handlers) getAuthTokens(_ context.Context, _ Envelope) Response {
	records, err := h.Store.List()
	if err != nil {
		return Failure(err)
	}
	return Success(map[string]any{"tokens": records})
}

func (h handlers) reportAuthToken(_ context.Context, msg Envelope) Response {
	var p struct {
		Token  string `json:"token"`
		URL    string `json:"url"`
		Source string `json:"source"`
	}
	if err := msg.Bind(&p); err != nil {
		return Failure(err)
	}
	if p.Token == "" {
		return failuref("reportAuthToken requires a token")
	}
	source := token.SourceContentScript
	if p.Source != "" {
		source = token.Source(p.Source)
	}
	added := h.Capture.Record(p.Token, p.URL, source)
	return Success(map[string]any{"added": added})
}

func (h handlers) deleteToken(_ context.Context, msg Envelope) Response {
	var p struct {
		Token string `json:"token"`
	}
	if err := msg.Bind(&p); err != nil {
		return Failure(err)
	}
	removed, err := h.Store.Remove(p.Token)
	if err != nil {
		return Failure(err)
	}
	return Success(map[string]any{"removed": removed})
}

func (h handlers) deleteAllTokens(_ context.Context, _ Envelope) Response {
	if err := h.Store.Clear(); err != nil {
		return Failure(err)
	}
	return Success(nil)
}

// fetchParams is the shared parameter frame of the fetch* actions. Each
// resource historically named its id field after itself, so all the aliases
// are accepted.
type fetchParams struct {
	Customer         string `json:"customer"`
	Dev              bool   `json:"dev"`
	CardID           string `json:"cardId"`
	BookID           string `json:"bookId"`
	AdministrationID string `json:"administrationId"`
	BalanceAccountID string `json:"balanceAccountId"`
	EntryID          string `json:"entryId"`
}

func (h handlers) bindFetch(msg Envelope, id func(fetchParams) string) (spendcloud.Ref, error) {
	var p fetchParams
	if err := msg.Bind(&p); err != nil {
		return spendcloud.Ref{}, err
	}
	if p.Customer == "" {
		return spendcloud.Ref{}, errors.New(msg.Action + " requires a customer")
	}
	resourceID := id(p)
	if resourceID == "" {
		return spendcloud.Ref{}, errors.New(msg.Action + " requires a resource id")
	}
	return spendcloud.Ref{Tenant: p.Customer, Dev: p.Dev, ID: resourceID}, nil
}

func (h handlers) fetchCardDetails(ctx context.Context, msg Envelope) Response {
	ref, err := h.bindFetch(msg, func(p fetchParams) string { return p.CardID })
	if err != nil {
		return Failure(err)
	}
	details, err := h.Resources.FetchCard(ctx, ref)
	if err != nil {
		h.Monitor.RecordError(msg.Action, err)
		return Failure(err)
	}
	return Success(fields(details))
}

func (h handlers) fetchBookDetails(ctx context.Context, msg Envelope) Response {
	ref, err := h.bindFetch(msg, func(p fetchParams) string { return p.BookID })
	if err != nil {
		return Failure(err)
	}
	details, err := h.Resources.FetchBook(ctx, ref)
	if err != nil {
		h.Monitor.RecordError(msg.Action, err)
		return Failure(err)
	}
	return Success(fields(details))
}

func (h handlers) fetchAdministrationDetails(ctx context.Context, msg Envelope) Response {
	ref, err := h.bindFetch(msg, func(p fetchParams) string { return p.AdministrationID })
	if err != nil {
		return Failure(err)
	}
	details, err := h.Resources.FetchAdministration(ctx, ref)
	if err != nil {
		h.Monitor.RecordError(msg.Action, err)
		return Failure(err)
	}
	return Success(fields(details))
}

func (h handlers) fetchBalanceAccountDetails(ctx context.Context, msg Envelope) Response {
	ref, err := h.bindFetch(msg, func(p fetchParams) string { return p.BalanceAccountID })
	if err != nil {
		return Failure(err)
	}
	details, err := h.Resources.FetchBalanceAccount(ctx, ref)
	if err != nil {
		h.Monitor.RecordError(msg.Action, err)
		return Failure(err)
	}
	return Success(fields(details))
}

func (h handlers) fetchEntryDetails(ctx context.Context, msg Envelope) Response {
	ref, err := h.bindFetch(msg, func(p fetchParams) string { return p.EntryID })
	if err != nil {
		return Failure(err)
	}
	details, err := h.Resources.FetchEntry(ctx, ref)
	if err != nil {
		h.Monitor.RecordError(msg.Action, err)
		return Failure(err)
	}
	return Success(fields(details))
}

func (h handlers) getHealth(_ context.Context, _ Envelope) Response {
	return Success(map[string]any{"health": h.Monitor.Snapshot()})
}

func (h handlers) getDebugLogs(_ context.Context, _ Envelope) Response {
	return Success(map[string]any{"logs": h.Monitor.Logs()})
}

func (h handlers) getErrorReports(_ context.Context, _ Envelope) Response {
	return Success(map[string]any{"errors": h.Monitor.Errors()})
}

func (h handlers) exportHealthReport(_ context.Context, _ Envelope) Response {
	report, err := h.Monitor.Export()
	if err != nil {
		return Failure(err)
	}
	return Success(map[string]any{"report": json.RawMessage(report)})
}

func (h handlers) getPreferences(_ context.Context, _ Envelope) Response {
	show, err := h.Store.ShowButtons()
	if err != nil {
		return Failure(err)
	}
	return Success(map[string]any{"showButtons": show})
}

func (h handlers) setPreferences(_ context.Context, msg Envelope) Response {
	var p struct {
		ShowButtons *bool `json:"showButtons"`
	}
	if err := msg.Bind(&p); err != nil {
		return Failure(err)
	}
	if p.ShowButtons == nil {
		return failuref("setPreferences requires showButtons")
	}
	if err := h.Store.SetShowButtons(*p.ShowButtons); err != nil {
		return Failure(err)
	}
	return Success(map[string]any{"showButtons": *p.ShowButtons})
}
