package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/rs/zerolog"

	"licence-plate-checker/internal/config"
)

// NewValidatorProxy forwards requests to the validator base URL unchanged
// in path. The outbound Host is the configured override or the target host.
func NewValidatorProxy(cfg config.ValidatorConfig, log zerolog.Logger) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid validator URL: %w", err)
	}

	host := cfg.HostHeader
	if host == "" {
		host = target.Host
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.Out.Host = host
			r.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("validator proxy failed")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   "validator unavailable",
			})
		},
	}
	return proxy, nil
}
