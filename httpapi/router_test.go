package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nappsnasarawa/levyreceipt"
	"github.com/nappsnasarawa/levyreceipt/portal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const recordJSON = `{"receiptNumber":"NAPPS-0001","reference":"PSK-7f3a9c21","memberName":"Aisha Bello",
"schoolName":"Bright Future Academy","wards":["Lafia East","Lafia North"],"amount":2500000,
"paidAt":"2024-03-05T10:15:00Z","paymentMethod":"card"}`

type finderFunc func(ctx context.Context, query string) (levyreceipt.PaymentRecord, error)

func (f finderFunc) Find(ctx context.Context, query string) (levyreceipt.PaymentRecord, error) {
	return f(ctx, query)
}

func sampleRecord() levyreceipt.PaymentRecord {
	return levyreceipt.PaymentRecord{
		ReceiptNumber: "NAPPS-0001",
		Reference:     "PSK-7f3a9c21",
		MemberName:    "Aisha Bello",
		SchoolName:    "Bright Future Academy",
		Wards:         []string{"Lafia East"},
		Amount:        2500000,
		PaidAt:        "2024-03-05T10:15:00Z",
	}
}

func newTestServer(t *testing.T, finder Finder) *httptest.Server {
	t.Helper()
	return newLimitedServer(t, finder, nil)
}

func newLimitedServer(t *testing.T, finder Finder, limiter *rate.Limiter) *httptest.Server {
	t.Helper()
	r, err := levyreceipt.NewRenderer(levyreceipt.WithClock(func() time.Time {
		return time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	srv := httptest.NewServer(NewRouter(&App{
		Renderer: r,
		Finder:   finder,
		Metrics:  NewMetrics(prometheus.NewRegistry()),
		Limiter:  limiter,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestRenderReceipt(t *testing.T) {
	srv := newTestServer(t, nil)
	res, err := http.Post(srv.URL+"/receipts", "application/json", strings.NewReader(recordJSON))
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	assert.Equal(t, "application/pdf", res.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="NAPPS_Levy_Receipt_NAPPS-0001.pdf"`, res.Header.Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(string(body), "%PDF-"))
}

func TestRenderReceiptIgnoresPortalKeys(t *testing.T) {
	srv := newTestServer(t, nil)
	withExtras := `{"id":42,"createdAt":"2024-03-05T10:15:01Z",` + strings.TrimPrefix(recordJSON, "{")
	res, err := http.Post(srv.URL+"/receipts", "application/json", strings.NewReader(withExtras))
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	assert.True(t, strings.HasPrefix(string(body), "%PDF-"))
}

func TestRenderReceiptThrottled(t *testing.T) {
	srv := newLimitedServer(t, nil, NewLimiter(0.001, 1))

	res, err := http.Post(srv.URL+"/receipts", "application/json", strings.NewReader(recordJSON))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Post(srv.URL+"/receipts", "application/json", strings.NewReader(recordJSON))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "1", res.Header.Get("Retry-After"))

	res, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestNewLimiterDisabled(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 5))
	l := NewLimiter(2, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
}

func TestRenderReceiptInvalid(t *testing.T) {
	srv := newTestServer(t, nil)

	res, err := http.Post(srv.URL+"/receipts", "application/json",
		strings.NewReader(`{"receiptNumber":"NAPPS-0001","reference":"r","amount":100,"paidAt":"2024-03-05"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	res, err = http.Post(srv.URL+"/receipts", "application/json", strings.NewReader(`{"receiptNumber":`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestDownloadReceipt(t *testing.T) {
	var asked string
	srv := newTestServer(t, finderFunc(func(_ context.Context, q string) (levyreceipt.PaymentRecord, error) {
		asked = q
		if q != "NAPPS-0001" {
			return levyreceipt.PaymentRecord{}, fmt.Errorf("%w: %q", portal.ErrNotFound, q)
		}
		return sampleRecord(), nil
	}))

	res, err := http.Get(srv.URL + "/receipts/NAPPS-0001")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, "NAPPS-0001", asked)
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	assert.Contains(t, res.Header.Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(string(body), "%PDF-"))

	res, err = http.Get(srv.URL + "/receipts/NAPPS-9999")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDownloadWithoutFinder(t *testing.T) {
	srv := newTestServer(t, nil)
	res, err := http.Get(srv.URL + "/receipts/NAPPS-0001")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, nil)
	res, err := http.Post(srv.URL+"/receipts", "application/json", strings.NewReader(recordJSON))
	require.NoError(t, err)
	res.Body.Close()

	res, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(body), `levyreceipt_receipts_total{outcome="served"} 1`)
	assert.Contains(t, string(body), "levyreceipt_build_duration_seconds_count 1")
}
