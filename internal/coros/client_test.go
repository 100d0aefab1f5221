package coros

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	c := NewClient()
	c.BaseURL = baseURL
	c.Retry = RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}
	c.Pacer = nil
	return c
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, loginPath, r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "runner@example.com", body["account"])
		require.Equal(t, float64(2), body["accountType"])

		sum := md5.Sum([]byte("hunter2"))
		require.Equal(t, hex.EncodeToString(sum[:]), body["pwd"])

		fmt.Fprint(w, `{"data":{"accessToken":"tok-123","userId":"user-9"}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	sess, err := c.Login(context.Background(), "runner@example.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "tok-123", sess.AccessToken)
	require.Equal(t, "user-9", sess.UserID)
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Login(context.Background(), "runner@example.com", "wrong")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, http.StatusUnauthorized, authErr.Status)
}

func TestLoginMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":null}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Login(context.Background(), "runner@example.com", "hunter2")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

// fakeListing serves a listing endpoint over a fixed set of activities
// and records the size parameter of each request.
func fakeListing(t *testing.T, total int, sizes *[]int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, listPath, r.URL.Path)
		require.Equal(t, "tok", r.Header.Get("Accesstoken"))

		page, err := strconv.Atoi(r.URL.Query().Get("pageNumber"))
		require.NoError(t, err)
		size, err := strconv.Atoi(r.URL.Query().Get("size"))
		require.NoError(t, err)
		*sizes = append(*sizes, size)

		start := (page - 1) * size
		end := start + size
		if end > total {
			end = total
		}
		refs := make([]ActivityRef, 0, size)
		for i := start; i < end; i++ {
			refs = append(refs, ActivityRef{
				LabelID:   fmt.Sprintf("label-%03d", i),
				SportType: SportOutdoorRun,
				Name:      fmt.Sprintf("Run %d", i),
			})
		}

		resp := map[string]any{"data": map[string]any{"count": total, "dataList": refs}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func TestListActivitiesPagination(t *testing.T) {
	var sizes []int
	srv := httptest.NewServer(fakeListing(t, 205, &sizes))
	defer srv.Close()

	c := newTestClient(srv.URL)
	refs, err := c.ListActivities(context.Background(), Session{AccessToken: "tok"}, Filter{})
	require.NoError(t, err)

	// One single-item probe, then ceil(205/100) = 3 full pages.
	require.Equal(t, []int{1, 100, 100, 100}, sizes)
	require.Len(t, refs, 205)
	for i, ref := range refs {
		require.Equal(t, fmt.Sprintf("label-%03d", i), ref.LabelID)
	}
}

func TestListActivitiesWithLimit(t *testing.T) {
	var sizes []int
	srv := httptest.NewServer(fakeListing(t, 205, &sizes))
	defer srv.Close()

	c := newTestClient(srv.URL)
	refs, err := c.ListActivities(context.Background(), Session{AccessToken: "tok"}, Filter{Limit: 50})
	require.NoError(t, err)

	// A limit skips the probe and becomes the page size.
	require.Equal(t, []int{50}, sizes)
	require.Len(t, refs, 50)
}

func TestListActivitiesLimitIsABudget(t *testing.T) {
	var sizes []int
	srv := httptest.NewServer(fakeListing(t, 500, &sizes))
	defer srv.Close()

	c := newTestClient(srv.URL)
	refs, err := c.ListActivities(context.Background(), Session{AccessToken: "tok"}, Filter{Limit: 150})
	require.NoError(t, err)

	// A limit above the page size spans pages but never overshoots.
	require.Equal(t, []int{100, 100}, sizes)
	require.Len(t, refs, 150)
	require.Equal(t, "label-149", refs[149].LabelID)
}

func TestListActivitiesEmpty(t *testing.T) {
	var sizes []int
	srv := httptest.NewServer(fakeListing(t, 0, &sizes))
	defer srv.Close()

	c := newTestClient(srv.URL)
	refs, err := c.ListActivities(context.Background(), Session{AccessToken: "tok"}, Filter{})
	require.NoError(t, err)
	require.Empty(t, refs)
	require.Equal(t, []int{1}, sizes) // probe only
}

func TestListActivitiesFilterSerialization(t *testing.T) {
	var gotModeList string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotModeList = r.URL.Query().Get("modeList")
		fmt.Fprint(w, `{"data":{"count":0,"dataList":[]}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.ListActivities(context.Background(), Session{AccessToken: "tok"}, Filter{
		Types: []SportType{SportOutdoorRun, SportRoadBike, SportHike},
	})
	require.NoError(t, err)
	require.Equal(t, "100,200,104", gotModeList)
}

func TestListActivitiesPageFailureAborts(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			// Probe and first page succeed.
			fmt.Fprint(w, `{"data":{"count":150,"dataList":[{"labelId":"a","sportType":100}]}}`)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	refs, err := c.ListActivities(context.Background(), Session{AccessToken: "tok"}, Filter{})
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	require.Nil(t, refs) // partial results are discarded
}

const detailBody = `{"data":{"summary":{"name":"Run"},"frequencyList":[{"heart":140,"timestamp":1}],"lapList":[]}}`

func TestFetchDetailRetriesUntilValid(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, detailPath, r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		q := r.URL.Query()
		require.Equal(t, "label-1", q.Get("labelId"))
		require.Equal(t, "100", q.Get("sportType"))
		require.Equal(t, "944", q.Get("screenW"))
		require.Equal(t, "1440", q.Get("screenH"))

		calls++
		if calls < 3 {
			// Transient degenerate payload: well-formed, null summary.
			fmt.Fprint(w, `{"data":{"summary":null}}`)
			return
		}
		fmt.Fprint(w, detailBody)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ref := ActivityRef{LabelID: "label-1", SportType: SportOutdoorRun}
	detail, err := c.FetchDetail(context.Background(), Session{AccessToken: "tok"}, ref)
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.JSONEq(t, `{"name":"Run"}`, string(detail.Summary))
	require.Len(t, detail.FrequencyList, 1)
}

func TestFetchDetailFirstTryAccepted(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, detailBody)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchDetail(context.Background(), Session{AccessToken: "tok"}, ActivityRef{LabelID: "x", SportType: SportOutdoorRun})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestFetchDetailExhaustsRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"data":{"summary":null}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchDetail(context.Background(), Session{AccessToken: "tok"}, ActivityRef{LabelID: "x", SportType: SportOutdoorRun})

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	require.Equal(t, 3, exErr.Attempts)
	require.Equal(t, 3, calls)
}

func TestFetchDetailCancellationIsNotExhaustion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		fmt.Fprint(w, `{"data":{"summary":null}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.Retry = RetryPolicy{MaxAttempts: 3, Delay: time.Minute}

	_, err := c.FetchDetail(ctx, Session{AccessToken: "tok"}, ActivityRef{LabelID: "x", SportType: SportOutdoorRun})
	require.ErrorIs(t, err, context.Canceled)

	var exErr *ExtractionError
	require.False(t, errors.As(err, &exErr), "cancellation must not look like retry exhaustion")
}

func TestFetchDetailRetriesTransportErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, detailBody)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchDetail(context.Background(), Session{AccessToken: "tok"}, ActivityRef{LabelID: "x", SportType: SportOutdoorRun})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestRequestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, downloadPath, r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "label-1", r.PostForm.Get("labelId"))
		require.Equal(t, "4", r.PostForm.Get("fileType"))
		require.Equal(t, "100", r.PostForm.Get("sportType"))
		fmt.Fprint(w, `{"data":{"fileUrl":"https://files.example.com/a.fit"}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ref := ActivityRef{LabelID: "label-1", SportType: SportOutdoorRun}
	url, ok, err := c.RequestDownload(context.Background(), Session{AccessToken: "tok"}, ref, FileFIT)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "https://files.example.com/a.fit", url)
}

func TestRequestDownloadUnsupported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No data key: the server's way of refusing the combination.
		fmt.Fprint(w, `{"message":"OK"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ref := ActivityRef{LabelID: "label-1", SportType: SportIndoorRun}
	url, ok, err := c.RequestDownload(context.Background(), Session{AccessToken: "tok"}, ref, FileGPX)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, url)
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "file-bytes")
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	body, err := c.Download(context.Background(), srv.URL+"/export/a.fit")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.Equal(t, "file-bytes", string(data))
}

func TestDownloadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Download(context.Background(), srv.URL+"/export/missing.fit")
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	require.Equal(t, http.StatusNotFound, terr.Status)
}
