package fetch

import (
	"net/http"
	"sync"
	"time"
)

// rateLimitedClient spaces upstream requests at least interval apart.
// Cache hits never reach it. Safe for concurrent use.
type rateLimitedClient struct {
	client   *http.Client
	interval time.Duration
	lastCall time.Time
	mu       sync.Mutex
}

func newRateLimitedClient(client *http.Client, interval time.Duration) *rateLimitedClient {
	return &rateLimitedClient{
		client:   client,
		interval: interval,
	}
}

func (r *rateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if wait := r.interval - time.Since(r.lastCall); wait > 0 {
		t := time.NewTimer(wait)
		select {
		case <-req.Context().Done():
			t.Stop()
			return nil, req.Context().Err()
		case <-t.C:
		}
	}
	resp, err := r.client.Do(req)
	r.lastCall = time.Now()
	return resp, err
}
