package capture

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/spendcloudtools/spendlink/pkg/token"
)

// NewProxy returns a reverse proxy in front of one tenant's API that records
// auth headers as requests pass through. publicBase is the upstream origin
// the captured tokens are attributed to (e.g. https://acme.spend.cloud);
// target is where requests are actually forwarded, which tests point at an
// httptest server.
func NewProxy(publicBase string, target *url.URL, interceptor *Interceptor) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		interceptor.Inspect(publicBase+req.URL.Path, req.Header, token.SourceWebRequest)
		director(req)
		req.Host = target.Host
	}
	return proxy
}
