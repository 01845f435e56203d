package links

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Prober issues a single reachability probe for a URL and reports the HTTP
// status, or an error when no response was obtained within the timeout.
type Prober interface {
	Probe(ctx context.Context, url string) (int, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, url string) (int, error)

func (f ProberFunc) Probe(ctx context.Context, url string) (int, error) {
	return f(ctx, url)
}

// ProbeConfig holds reachability probe settings.
type ProbeConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	RateRPS   float64       `mapstructure:"rate_rps"`
	RateBurst int           `mapstructure:"rate_burst"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	UserAgent string        `mapstructure:"user_agent"`
}

// HTTPProber checks URL reachability with a HEAD request, following
// redirects. Probes are rate limited, and results may be cached in Redis so
// retry attempts within one workflow (and concurrent sheet rows) do not
// re-hit the same host.
type HTTPProber struct {
	client   *http.Client
	limiter  *rate.Limiter
	cache    *redis.Client
	cacheTTL time.Duration
	ua       string
	logger   *zap.Logger
}

// NewHTTPProber creates a prober. cache may be nil to disable caching.
func NewHTTPProber(cfg ProbeConfig, cache *redis.Client, logger *zap.Logger) *HTTPProber {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateRPS == 0 {
		cfg.RateRPS = 5
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 10
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "answerdesk-linkchecker/1.0"
	}
	return &HTTPProber{
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst),
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		ua:       cfg.UserAgent,
		logger:   logger,
	}
}

func (p *HTTPProber) cacheKey(url string) string {
	return "linkcheck:status:" + url
}

// Probe issues a rate-limited HEAD request. Only an HTTP status reaches the
// cache; transport errors are retried on the next probe.
func (p *HTTPProber) Probe(ctx context.Context, url string) (int, error) {
	if p.cache != nil {
		if v, err := p.cache.Get(ctx, p.cacheKey(url)).Result(); err == nil {
			if status, convErr := strconv.Atoi(v); convErr == nil {
				p.logger.Debug("Link probe cache hit",
					zap.String("url", url),
					zap.Int("status", status),
				)
				return status, nil
			}
		}
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("probe rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build probe request: %w", err)
	}
	req.Header.Set("User-Agent", p.ua)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if p.cache != nil {
		if err := p.cache.Set(ctx, p.cacheKey(url), strconv.Itoa(resp.StatusCode), p.cacheTTL).Err(); err != nil {
			p.logger.Warn("Link probe cache write failed", zap.String("url", url), zap.Error(err))
		}
	}

	return resp.StatusCode, nil
}
