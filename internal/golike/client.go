package golike

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/domain"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/metrics"
)

const (
	listTimeout  = 10 * time.Second
	pollTimeout  = 3 * time.Second
	claimTimeout = 5 * time.Second

	// The API reports claim outcomes as Vietnamese prose; this is the observed
	// success indicator ("thành công" = succeeded).
	successIndicator = "thành công"
)

// Client talks to the Golike gateway. One instance is shared by all sessions;
// the credential travels per call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	clock      clockwork.Clock
}

var _ domain.JobProvider = (*Client)(nil)

func NewClient(baseURL string, clock clockwork.Clock) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		clock:      clock,
	}
}

// headers imitates the browser the Golike web app runs in. The gateway rejects
// requests without them.
func (c *Client) headers(token string) http.Header {
	h := http.Header{}
	h.Set("accept-language", "vi,fr-FR;q=0.9,fr;q=0.8,en-US;q=0.7,en;q=0.6")
	h.Set("authorization", token)
	h.Set("content-type", "application/json;charset=utf-8")
	h.Set("origin", "https://app.golike.net")
	h.Set("priority", "u=1, i")
	h.Set("sec-ch-ua", `"Google Chrome";v="135", "Not-A.Brand";v="8", "Chromium";v="135"`)
	h.Set("sec-ch-ua-mobile", "?1")
	h.Set("sec-ch-ua-platform", `"Android"`)
	h.Set("sec-fetch-dest", "empty")
	h.Set("sec-fetch-mode", "cors")
	h.Set("sec-fetch-site", "same-site")
	h.Set("t", "VFZSak1FNTZWVFJOUkdkNFRrRTlQUT09")
	return h
}

// --- Wire payloads ---

type accountsResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    []accountPayload `json:"data"`
}

type accountPayload struct {
	ID                int64  `json:"id"`
	Status            int    `json:"status"`
	IsBanned          int    `json:"is_banned"`
	Username          string `json:"username"`
	InstagramUsername string `json:"instagram_username"`
	ThreadsUsername   string `json:"threads_username"`
}

type jobResponse struct {
	Success bool            `json:"success"`
	Data    *jobPayload     `json:"data"`
	Lock    json.RawMessage `json:"lock"`
}

type jobPayload struct {
	ID             int64 `json:"id"`
	Status         *int  `json:"status"`
	PriceAfterCost *int  `json:"price_after_cost"`
	PricePer       int   `json:"price_per"`
}

func (p *jobPayload) reward() int {
	if p.PriceAfterCost != nil {
		return *p.PriceAfterCost
	}
	return p.PricePer
}

type claimResponse struct {
	Message string `json:"message"`
	Data    struct {
		Prices int `json:"prices"`
	} `json:"data"`
}

// --- JobProvider implementation ---

func (c *Client) ListEligibleAccounts(ctx context.Context, token string, platform domain.Platform) ([]domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/api/%s-account", c.baseURL, platform)
	body, status, err := c.get(ctx, token, url, "list_accounts")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s accounts: %w", platform, err)
	}
	if status == http.StatusUnauthorized {
		return nil, fmt.Errorf("listing %s accounts: %w", platform, domain.ErrUnauthorized)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("listing %s accounts: unexpected HTTP %d", platform, status)
	}

	var resp accountsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s account list: %w", platform, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("provider rejected %s account listing: %s", platform, resp.Message)
	}

	accounts := make([]domain.Account, 0, len(resp.Data))
	for _, acc := range resp.Data {
		if acc.Status != 1 || acc.IsBanned != 0 {
			continue
		}
		accounts = append(accounts, domain.Account{
			ID:       acc.ID,
			Platform: platform,
			Name:     displayName(acc, platform),
		})
	}
	return accounts, nil
}

func displayName(acc accountPayload, platform domain.Platform) string {
	switch {
	case platform == domain.PlatformInstagram && acc.InstagramUsername != "":
		return acc.InstagramUsername
	case platform == domain.PlatformThreads && acc.ThreadsUsername != "":
		return acc.ThreadsUsername
	case acc.Username != "":
		return acc.Username
	default:
		return fmt.Sprintf("ID:%d", acc.ID)
	}
}

func (c *Client) PollJob(ctx context.Context, token string, account domain.Account) (*domain.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, pollTimeout)
	defer cancel()

	var url string
	switch account.Platform {
	case domain.PlatformInstagram:
		url = fmt.Sprintf("%s/api/advertising/publishers/instagram/jobs?instagram_account_id=%d&data=null", c.baseURL, account.ID)
	case domain.PlatformThreads:
		url = fmt.Sprintf("%s/api/advertising/publishers/threads/jobs?account_id=%d", c.baseURL, account.ID)
	default:
		return nil, fmt.Errorf("unknown platform %q", account.Platform)
	}

	// Any failure here means "no job right now" - the worker retries shortly.
	body, status, err := c.get(ctx, token, url, "poll_job")
	if err != nil || status != http.StatusOK {
		return nil, nil
	}

	var resp jobResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil
	}
	if !resp.Success || resp.Data == nil {
		return nil, nil
	}

	switch account.Platform {
	case domain.PlatformInstagram:
		if resp.Data.Status == nil || *resp.Data.Status != 0 {
			return nil, nil
		}
	case domain.PlatformThreads:
		if len(resp.Lock) == 0 || string(resp.Lock) == "null" {
			return nil, nil
		}
	}

	return &domain.Job{
		ID:       resp.Data.ID,
		Platform: account.Platform,
		Reward:   resp.Data.reward(),
	}, nil
}

func (c *Client) ClaimJob(ctx context.Context, token string, account domain.Account, job domain.Job) (domain.ClaimResult, error) {
	ctx, cancel := context.WithTimeout(ctx, claimTimeout)
	defer cancel()

	var url string
	var payload map[string]any
	switch account.Platform {
	case domain.PlatformInstagram:
		url = c.baseURL + "/api/advertising/publishers/instagram/complete-jobs"
		payload = map[string]any{
			"instagram_users_advertising_id": job.ID,
			"instagram_account_id":           account.ID,
			"async":                          true,
			"data":                           nil,
		}
	case domain.PlatformThreads:
		url = c.baseURL + "/api/advertising/publishers/threads/complete-jobs"
		payload = map[string]any{
			"account_id": account.ID,
			"ads_id":     job.ID,
		}
	default:
		return domain.ClaimResult{}, fmt.Errorf("unknown platform %q", account.Platform)
	}

	body, status, err := c.post(ctx, token, url, payload, "claim_job")
	if err != nil {
		return domain.ClaimResult{}, fmt.Errorf("claim delivery failed: %w", err)
	}

	var resp claimResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.WarnContext(ctx, "Unparseable claim response", "platform", account.Platform, "http_status", status)
		return domain.ClaimResult{}, nil
	}

	if !strings.Contains(strings.ToLower(resp.Message), successIndicator) {
		if resp.Message == "" {
			slog.WarnContext(ctx, "Claim response carried no outcome message", "platform", account.Platform, "http_status", status)
		}
		return domain.ClaimResult{}, nil
	}

	reward := job.Reward
	if account.Platform == domain.PlatformThreads {
		reward = resp.Data.Prices
	}
	return domain.ClaimResult{Claimed: true, Reward: reward}, nil
}

// --- Transport helpers ---

func (c *Client) get(ctx context.Context, token, url, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	return c.do(req, token, endpoint)
}

func (c *Client) post(ctx context.Context, token, url string, payload any, endpoint string) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	return c.do(req, token, endpoint)
}

func (c *Client) do(req *http.Request, token, endpoint string) ([]byte, int, error) {
	req.Header = c.headers(token)

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ProviderRequestDuration.WithLabelValues(endpoint).Observe(c.clock.Since(start).Seconds())
	if err != nil {
		metrics.ProviderErrorsTotal.WithLabelValues(endpoint).Inc()
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProviderErrorsTotal.WithLabelValues(endpoint).Inc()
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
