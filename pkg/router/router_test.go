package router

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendcloudtools/spendlink/pkg/capture"
	"github.com/spendcloudtools/spendlink/pkg/health"
	"github.com/spendcloudtools/spendlink/pkg/spendcloud"
	"github.com/spendcloudtools/spendlink/pkg/token"
)

type FakeResourceService struct {
	FetchCardFunc           func(ctx context.Context, ref spendcloud.Ref) (*spendcloud.CardDetails, error)
	FetchBookFunc           func(ctx context.Context, ref spendcloud.Ref) (*spendcloud.BookDetails, error)
	FetchAdministrationFunc func(ctx context.Context, ref spendcloud.Ref) (*spendcloud.AdministrationDetails, error)
	FetchBalanceAccountFunc func(ctx context.Context, ref spendcloud.Ref) (*spendcloud.BalanceAccountDetails, error)
	FetchEntryFunc          func(ctx context.Context, ref spendcloud.Ref) (*spendcloud.EntryDetails, error)
}

func (f *FakeResourceService) FetchCard(ctx context.Context, ref spendcloud.Ref) (*spendcloud.CardDetails, error) {
	if f.FetchCardFunc != nil {
		return f.FetchCardFunc(ctx, ref)
	}
	return &spendcloud.CardDetails{}, nil
}

func (f *FakeResourceService) FetchBook(ctx context.Context, ref spendcloud.Ref) (*spendcloud.BookDetails, error) {
	if f.FetchBookFunc != nil {
		return f.FetchBookFunc(ctx, ref)
	}
	return &spendcloud.BookDetails{}, nil
}

func (f *FakeResourceService) FetchAdministration(ctx context.Context, ref spendcloud.Ref) (*spendcloud.AdministrationDetails, error) {
	if f.FetchAdministrationFunc != nil {
		return f.FetchAdministrationFunc(ctx, ref)
	}
	return &spendcloud.AdministrationDetails{}, nil
}

func (f *FakeResourceService) FetchBalanceAccount(ctx context.Context, ref spendcloud.Ref) (*spendcloud.BalanceAccountDetails, error) {
	if f.FetchBalanceAccountFunc != nil {
		return f.FetchBalanceAccountFunc(ctx, ref)
	}
	return &spendcloud.BalanceAccountDetails{}, nil
}

func (f *FakeResourceService) FetchEntry(ctx context.Context, ref spendcloud.Ref) (*spendcloud.EntryDetails, error) {
	if f.FetchEntryFunc != nil {
		return f.FetchEntryFunc(ctx, ref)
	}
	return &spendcloud.EntryDetails{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDeps(t *testing.T, resources ResourceService) (Deps, *token.Store) {
	t.Helper()
	store, err := token.NewStore(t.TempDir())
	require.NoError(t, err)
	logger := testLogger()
	monitor := health.NewMonitor()
	return Deps{
		Store:     store,
		Resources: resources,
		Capture:   capture.NewInterceptor(store, logger, monitor),
		Monitor:   monitor,
		Logger:    logger,
	}, store
}

func dispatch(t *testing.T, r *Router, payload string) Response {
	t.Helper()
	msg, err := ParseEnvelope([]byte(payload))
	require.NoError(t, err)
	return r.Dispatch(context.Background(), msg)
}

func TestParseEnvelope(t *testing.T) {
	msg, err := ParseEnvelope([]byte(`{"action":"getAuthTokens","customer":"acme"}`))
	require.NoError(t, err)
	assert.Equal(t, "getAuthTokens", msg.Action)

	_, err = ParseEnvelope([]byte(`{"customer":"acme"}`))
	assert.Error(t, err)

	_, err = ParseEnvelope([]byte(`not json`))
	assert.Error(t, err)
}

func TestDispatchUnknownActionAlwaysResponds(t *testing.T) {
	deps, _ := testDeps(t, &FakeResourceService{})
	r := NewWithHandlers(deps)

	resp := dispatch(t, r, `{"action":"makeCoffee"}`)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "unknown action: makeCoffee", resp["error"])

	report := deps.Monitor.Snapshot()
	assert.Equal(t, int64(1), report.Counters["messages.unknown"])
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	monitor := health.NewMonitor()
	r := New(testLogger(), monitor)
	r.Register("explode", func(ctx context.Context, msg Envelope) Response {
		panic("boom")
	})

	resp := dispatch(t, r, `{"action":"explode"}`)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "explode")

	errs := monitor.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "boom")
}

func TestDispatchNilHandlerResponse(t *testing.T) {
	r := New(testLogger(), health.NewMonitor())
	r.Register("silent", func(ctx context.Context, msg Envelope) Response {
		return nil
	})

	resp := dispatch(t, r, `{"action":"silent"}`)
	assert.Equal(t, false, resp["success"])
}

func TestTokenActions(t *testing.T) {
	deps, store := testDeps(t, &FakeResourceService{})
	r := NewWithHandlers(deps)

	resp := dispatch(t, r, `{"action":"reportAuthToken","token":"tok-1","url":"https://acme.spend.cloud/api/x"}`)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, true, resp["added"])

	// Same token again is a no-op.
	resp = dispatch(t, r, `{"action":"reportAuthToken","token":"tok-1","url":"https://acme.spend.cloud/api/x"}`)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, false, resp["added"])

	resp = dispatch(t, r, `{"action":"getAuthTokens"}`)
	assert.Equal(t, true, resp["success"])
	tokens, ok := resp["tokens"].([]token.Record)
	require.True(t, ok)
	require.Len(t, tokens, 1)
	assert.Equal(t, token.SourceContentScript, tokens[0].Source)

	resp = dispatch(t, r, `{"action":"deleteToken","token":"tok-1"}`)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, true, resp["removed"])

	records, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReportAuthTokenRequiresToken(t *testing.T) {
	deps, _ := testDeps(t, &FakeResourceService{})
	r := NewWithHandlers(deps)

	resp := dispatch(t, r, `{"action":"reportAuthToken","url":"https://acme.spend.cloud/api/x"}`)
	assert.Equal(t, false, resp["success"])
}

func TestDeleteAllTokens(t *testing.T) {
	deps, store := testDeps(t, &FakeResourceService{})
	r := NewWithHandlers(deps)

	dispatch(t, r, `{"action":"reportAuthToken","token":"a","url":"https://acme.spend.cloud/api/x"}`)
	dispatch(t, r, `{"action":"reportAuthToken","token":"b","url":"https://acme.spend.cloud/api/x"}`)

	resp := dispatch(t, r, `{"action":"deleteAllTokens"}`)
	assert.Equal(t, true, resp["success"])

	records, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchCardDetails(t *testing.T) {
	var gotRef spendcloud.Ref
	fake := &FakeResourceService{
		FetchCardFunc: func(ctx context.Context, ref spendcloud.Ref) (*spendcloud.CardDetails, error) {
			gotRef = ref
			return &spendcloud.CardDetails{
				CardID:              ref.ID,
				PaymentInstrumentID: "PI123",
				Vendor:              "visa",
			}, nil
		},
	}
	deps, _ := testDeps(t, fake)
	r := NewWithHandlers(deps)

	resp := dispatch(t, r, `{"action":"fetchCardDetails","customer":"acme","dev":true,"cardId":"7"}`)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "7", resp["cardId"])
	assert.Equal(t, "PI123", resp["paymentInstrumentId"])
	assert.Equal(t, "visa", resp["vendor"])
	assert.Equal(t, spendcloud.Ref{Tenant: "acme", Dev: true, ID: "7"}, gotRef)
}

func TestFetchValidation(t *testing.T) {
	deps, _ := testDeps(t, &FakeResourceService{})
	r := NewWithHandlers(deps)

	resp := dispatch(t, r, `{"action":"fetchCardDetails","cardId":"7"}`)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "customer")

	resp = dispatch(t, r, `{"action":"fetchCardDetails","customer":"acme"}`)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "resource id")
}

func TestFetchErrorIsReported(t *testing.T) {
	fake := &FakeResourceService{
		FetchEntryFunc: func(ctx context.Context, ref spendcloud.Ref) (*spendcloud.EntryDetails, error) {
			return nil, &spendcloud.APIError{StatusCode: 404, Title: "Not Found"}
		},
	}
	deps, _ := testDeps(t, fake)
	r := NewWithHandlers(deps)

	resp := dispatch(t, r, `{"action":"fetchEntryDetails","customer":"acme","entryId":"E1"}`)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "404")

	errs := deps.Monitor.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "fetchEntryDetails", errs[0].Source)
}

func TestHealthActions(t *testing.T) {
	deps, _ := testDeps(t, &FakeResourceService{})
	r := NewWithHandlers(deps)

	dispatch(t, r, `{"action":"getAuthTokens"}`)

	resp := dispatch(t, r, `{"action":"getExtensionHealth"}`)
	assert.Equal(t, true, resp["success"])
	report, ok := resp["health"].(health.Report)
	require.True(t, ok)
	assert.Equal(t, int64(1), report.Counters["messages.handled"])

	resp = dispatch(t, r, `{"action":"getDebugLogs"}`)
	assert.Equal(t, true, resp["success"])

	resp = dispatch(t, r, `{"action":"exportHealthReport"}`)
	assert.Equal(t, true, resp["success"])
	raw, ok := resp["report"].(json.RawMessage)
	require.True(t, ok)
	var exported health.Report
	require.NoError(t, json.Unmarshal(raw, &exported))
}

func TestPreferences(t *testing.T) {
	deps, _ := testDeps(t, &FakeResourceService{})
	r := NewWithHandlers(deps)

	resp := dispatch(t, r, `{"action":"getPreferences"}`)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, true, resp["showButtons"])

	resp = dispatch(t, r, `{"action":"setPreferences","showButtons":false}`)
	assert.Equal(t, true, resp["success"])

	resp = dispatch(t, r, `{"action":"getPreferences"}`)
	assert.Equal(t, false, resp["showButtons"])

	resp = dispatch(t, r, `{"action":"setPreferences"}`)
	assert.Equal(t, false, resp["success"])
}

// TestCaptureToFetchFlow drives the full loop: a token captured off an API
// request is the one attached to a later resource lookup for that tenant.
func TestCaptureToFetchFlow(t *testing.T) {
	now := time.Now()
	exp := now.Add(time.Hour)
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]any{"exp": exp.Unix(), "client": "acme"})
	require.NoError(t, err)
	jwt := header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"

	var gotPath, gotToken string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get(spendcloud.AuthHeader)
		_, _ = w.Write([]byte(`{
			"data": {
				"id": "7",
				"attributes": {"adyenPaymentInstrumentId": "PI123", "vendor": "visa"}
			}
		}`))
	}))
	defer api.Close()

	store, err := token.NewStore(t.TempDir())
	require.NoError(t, err)
	logger := testLogger()
	monitor := health.NewMonitor()
	interceptor := capture.NewInterceptor(store, logger, monitor)

	client := spendcloud.NewClient(token.Provider{Store: store},
		spendcloud.WithBaseURL(func(tenant string, dev bool) string { return api.URL }),
		spendcloud.WithHTTPClient(api.Client()),
	)

	r := NewWithHandlers(Deps{
		Store:     store,
		Resources: client,
		Capture:   interceptor,
		Monitor:   monitor,
		Logger:    logger,
	})

	// A request to the tenant API goes past the interceptor.
	h := http.Header{}
	h.Set("Authorization", "Bearer "+jwt)
	require.True(t, interceptor.Inspect("https://acme.spend.cloud/api/cards/7", h, token.SourceWebRequest))

	// A later lookup rides on the captured token.
	resp := dispatch(t, r, `{"action":"fetchCardDetails","customer":"acme","cardId":"7"}`)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "PI123", resp["paymentInstrumentId"])
	assert.Equal(t, "visa", resp["vendor"])
	assert.Equal(t, "/api/cards/7", gotPath)
	assert.Equal(t, jwt, gotToken)
}
