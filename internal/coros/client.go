package coros

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const BaseURL = "https://teamapi.coros.com"

const (
	loginPath    = "/account/login"
	listPath     = "/activity/query"
	detailPath   = "/activity/detail/query"
	downloadPath = "/activity/detail/download"
)

// PaginationLimit is the largest page size the listing endpoint accepts.
const PaginationLimit = 100

// Distinct timeout budgets per call class. Detail queries return much
// heavier payloads (full sample series) than lookups and listing pages.
const (
	lookupTimeout = 10 * time.Second
	detailTimeout = 25 * time.Second
)

// Fixed screen dimensions the detail endpoint insists on. They shape
// server-side chart rendering and carry no meaning for this client.
const (
	screenW = 944
	screenH = 1440
)

// Client talks to the COROS Training Hub private API. It is not a
// general scraping layer: it targets this one undocumented surface and
// tolerates its quirks rather than abstracting over providers.
type Client struct {
	// BaseURL is overridable for tests.
	BaseURL string
	// Retry bounds detail fetches.
	Retry RetryPolicy

	httpClient *http.Client
	// streamClient has no timeout so large export downloads are not
	// cut off mid-stream; per-request deadlines come from the context.
	streamClient *http.Client
	// Pacer spaces out requests; nil disables pacing.
	Pacer *Pacer
}

// NewClient creates a client with default pacing and retry behavior.
func NewClient() *Client {
	return &Client{
		BaseURL:      BaseURL,
		Retry:        DefaultRetryPolicy,
		httpClient:   &http.Client{},
		streamClient: &http.Client{},
		Pacer:        NewPacer(100 * time.Millisecond),
	}
}

// Login authenticates and returns the session context used by all
// other calls. The password is MD5-hashed before transmission because
// the vendor protocol demands it; this is not a confidentiality
// mechanism.
func (c *Client) Login(ctx context.Context, account, password string) (Session, error) {
	sum := md5.Sum([]byte(password))
	body, err := json.Marshal(map[string]any{
		"account":     account,
		"accountType": 2,
		"pwd":         hex.EncodeToString(sum[:]),
	})
	if err != nil {
		return Session{}, fmt.Errorf("encoding login request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Session{}, &AuthError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return Session{}, &AuthError{Status: resp.StatusCode, Reason: string(msg)}
	}

	var decoded loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Session{}, &AuthError{Reason: fmt.Sprintf("decoding login response: %v", err)}
	}
	if decoded.Data == nil || decoded.Data.AccessToken == "" {
		return Session{}, &AuthError{Reason: "login response has no access token"}
	}

	return Session{
		AccessToken: decoded.Data.AccessToken,
		UserID:      decoded.Data.UserID,
	}, nil
}

// ListActivities pages through the activity listing. With no limit it
// probes for the total count first and then fetches
// ceil(count/PaginationLimit) pages; with a limit the limit is a hard
// request budget: pages are min(limit, PaginationLimit) items and the
// result never exceeds the limit. Results come back in server order
// with no de-duplication: the server's page-number cursor is trusted.
// Any failed page aborts the whole listing.
func (c *Client) ListActivities(ctx context.Context, sess Session, filter Filter) ([]ActivityRef, error) {
	modeList := ""
	if len(filter.Types) > 0 {
		codes := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			codes[i] = strconv.Itoa(int(t))
		}
		modeList = strings.Join(codes, ",")
	}

	total := filter.Limit
	pageSize := filter.Limit
	if pageSize > PaginationLimit {
		pageSize = PaginationLimit
	}

	if filter.Limit == 0 {
		// Probe with a single-item page to learn the total count for
		// this filter, then pull the rest in full-size chunks.
		probe, err := c.listPage(ctx, sess, modeList, 1, 1)
		if err != nil {
			return nil, err
		}
		total = probe.Data.Count
		pageSize = PaginationLimit
	}

	if total == 0 {
		return nil, nil
	}

	var refs []ActivityRef
	numPages := (total + pageSize - 1) / pageSize
	for page := 1; page <= numPages; page++ {
		res, err := c.listPage(ctx, sess, modeList, page, pageSize)
		if err != nil {
			return nil, err
		}
		refs = append(refs, res.Data.DataList...)
	}

	// The last page can overshoot the budget when the limit is not a
	// multiple of the page size.
	if len(refs) > total {
		refs = refs[:total]
	}

	return refs, nil
}

func (c *Client) listPage(ctx context.Context, sess Session, modeList string, page, size int) (*listResponse, error) {
	params := url.Values{}
	params.Set("modeList", modeList)
	params.Set("pageNumber", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	body, err := c.do(ctx, http.MethodGet, listPath, params, sess)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var decoded listResponse
	if err := json.NewDecoder(body).Decode(&decoded); err != nil {
		return nil, &TransportError{URL: c.BaseURL + listPath, Err: fmt.Errorf("decoding listing page %d: %w", page, err)}
	}
	if decoded.Data == nil {
		return nil, &TransportError{URL: c.BaseURL + listPath, Err: fmt.Errorf("listing page %d has no data", page)}
	}

	return &decoded, nil
}

// FetchDetail retrieves the raw detail payload for one activity,
// retrying per the client's policy. A payload is only accepted when it
// carries a non-null summary; exhausting the budget yields an
// ExtractionError naming the endpoint and attempt count. Cancellation
// surfaces as the context's error, not an ExtractionError.
func (c *Client) FetchDetail(ctx context.Context, sess Session, ref ActivityRef) (*Detail, error) {
	result, err := retry(ctx, c.Retry,
		func(ctx context.Context) (*detailResponse, error) {
			return c.fetchDetailOnce(ctx, sess, ref)
		},
		(*detailResponse).Valid,
	)
	if errors.Is(err, errRetriesExhausted) {
		return nil, &ExtractionError{Endpoint: c.BaseURL + detailPath, Attempts: c.Retry.MaxAttempts}
	}
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *Client) fetchDetailOnce(ctx context.Context, sess Session, ref ActivityRef) (*detailResponse, error) {
	params := url.Values{}
	params.Set("labelId", ref.LabelID)
	params.Set("sportType", strconv.Itoa(int(ref.SportType)))
	params.Set("screenW", strconv.Itoa(screenW))
	params.Set("screenH", strconv.Itoa(screenH))

	ctx, cancel := context.WithTimeout(ctx, detailTimeout)
	defer cancel()

	body, err := c.do(ctx, http.MethodPost, detailPath, params, sess)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var decoded detailResponse
	if err := json.NewDecoder(body).Decode(&decoded); err != nil {
		return nil, &TransportError{URL: c.BaseURL + detailPath, Err: fmt.Errorf("decoding detail: %w", err)}
	}

	return &decoded, nil
}

// RequestDownload asks for a download handle for one activity in the
// given format. A success response without a data key is the vendor's
// way of signaling an unsupported sport/format combination; that is
// reported as ok=false, not an error.
func (c *Client) RequestDownload(ctx context.Context, sess Session, ref ActivityRef, ft FileType) (string, bool, error) {
	form := url.Values{}
	form.Set("labelId", ref.LabelID)
	form.Set("fileType", strconv.Itoa(int(ft)))
	form.Set("sportType", strconv.Itoa(int(ref.SportType)))

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	if err := c.Pacer.Wait(ctx); err != nil {
		return "", false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+downloadPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", false, fmt.Errorf("building download request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accesstoken", sess.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, &TransportError{URL: c.BaseURL + downloadPath, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, &TransportError{URL: c.BaseURL + downloadPath, Status: resp.StatusCode}
	}

	var decoded downloadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", false, &TransportError{URL: c.BaseURL + downloadPath, Err: fmt.Errorf("decoding download response: %w", err)}
	}
	if decoded.Data == nil || decoded.Data.FileURL == "" {
		return "", false, nil
	}

	return decoded.Data.FileURL, true, nil
}

// Download streams the file behind a download URL. The caller owns the
// returned body.
func (c *Client) Download(ctx context.Context, fileURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building file request: %w", err)
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: fileURL, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &TransportError{URL: fileURL, Status: resp.StatusCode}
	}

	return resp.Body, nil
}

// do sends a request with the session token attached and returns the
// response body on a 2xx status.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, sess Session) (io.ReadCloser, error) {
	if err := c.Pacer.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accesstoken", sess.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: reqURL, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &TransportError{URL: reqURL, Status: resp.StatusCode}
	}

	return resp.Body, nil
}
