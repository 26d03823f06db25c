package translation

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ProxyConfig maps a scheme to a proxy address, e.g. {"https": "http://127.0.0.1:7890"}.
// Only the https entry is used.
type ProxyConfig map[string]string

// HTTPS returns the trimmed https proxy address
func (p ProxyConfig) HTTPS() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p["https"])
}

// TransportStrategy builds an HTTP client that routes through proxy
type TransportStrategy func(proxy string) (*http.Client, error)

// TransportBuilder turns proxy settings into an HTTP client. A nil client
// means the library default should be used.
type TransportBuilder interface {
	Build(proxy ProxyConfig) (*http.Client, error)
}

// BestEffortTransport tries each strategy in order and returns the first
// client that could be built. When every strategy fails it returns a nil
// client together with the collected errors.
type BestEffortTransport struct {
	Strategies []TransportStrategy
}

// NewBestEffortTransport returns a builder with the default strategies:
// a full proxy URL first, then a bare host:port.
func NewBestEffortTransport() *BestEffortTransport {
	return &BestEffortTransport{
		Strategies: []TransportStrategy{ProxyURLStrategy, HostPortStrategy},
	}
}

// Build implements TransportBuilder
func (b *BestEffortTransport) Build(proxy ProxyConfig) (*http.Client, error) {
	addr := proxy.HTTPS()
	if addr == "" {
		return nil, nil
	}

	var errs []string
	for _, strategy := range b.Strategies {
		client, err := strategy(addr)
		if err == nil && client != nil {
			return client, nil
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return nil, fmt.Errorf("no proxy strategy accepted %q: %s", addr, strings.Join(errs, "; "))
}

// ProxyURLStrategy accepts addresses with a scheme, e.g. http://host:port or socks5://host:port
func ProxyURLStrategy(proxy string) (*http.Client, error) {
	u, err := url.Parse(proxy)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("proxy url %q needs a scheme and host", proxy)
	}
	return proxyClient(u), nil
}

// HostPortStrategy accepts a bare host:port and assumes an http proxy
func HostPortStrategy(proxy string) (*http.Client, error) {
	if strings.Contains(proxy, "://") {
		return nil, fmt.Errorf("proxy %q is not a bare host:port", proxy)
	}
	u, err := url.Parse("http://" + proxy)
	if err != nil {
		return nil, fmt.Errorf("parse proxy host: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy %q has no host", proxy)
	}
	return proxyClient(u), nil
}

func proxyClient(u *url.URL) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyURL(u)
	return &http.Client{Transport: transport}
}
