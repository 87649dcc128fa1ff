package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	DefaultTimeout   = 15 * time.Second
)

// FetchError is returned for transport failures and non-2xx responses.
// StatusCode is 0 when the request never got a response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Options struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher does a single GET per page. It never retries.
type Fetcher struct {
	http *resty.Client
}

func New(opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Accept-Language", "en-US,en;q=0.5")
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(0)

	return &Fetcher{http: client}
}

// Fetch returns the raw body of url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	res, err := f.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if !res.IsSuccess() {
		return nil, &FetchError{URL: url, StatusCode: res.StatusCode()}
	}
	return res.Body(), nil
}
