package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/grand-theater/internal/config"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "test:cache",
	}
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRedisCacheHitAndMiss(t *testing.T) {
	rdb := newRedis(t)
	e := echo.New()
	calls := 0
	e.GET("/api/movies/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "calls": calls})
	}, NewRedisCache(cacheConfig(), rdb))

	first := serve(e, http.MethodGet, "/api/movies/1")
	if first.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first X-Cache = %q", first.Header().Get("X-Cache"))
	}
	second := serve(e, http.MethodGet, "/api/movies/1")
	if second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("second X-Cache = %q", second.Header().Get("X-Cache"))
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("cached body %q differs from %q", second.Body.String(), first.Body.String())
	}
	if !strings.HasPrefix(second.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		t.Fatalf("content type not restored: %q", second.Header().Get(echo.HeaderContentType))
	}

	other := serve(e, http.MethodGet, "/api/movies/2")
	if other.Header().Get("X-Cache") != "MISS" || !strings.Contains(other.Body.String(), `"id":"2"`) {
		t.Fatalf("different path served from cache: %s %q", other.Header().Get("X-Cache"), other.Body.String())
	}
	if calls != 2 {
		t.Fatalf("handler called %d times, want 2", calls)
	}
}

func TestRedisCacheSkipsNonOK(t *testing.T) {
	rdb := newRedis(t)
	e := echo.New()
	calls := 0
	e.GET("/api/movies/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}, NewRedisCache(cacheConfig(), rdb))

	serve(e, http.MethodGet, "/api/movies/9")
	rec := serve(e, http.MethodGet, "/api/movies/9")
	if rec.Code != http.StatusNotFound || calls != 2 {
		t.Fatalf("404 should not be cached: code %d, calls %d", rec.Code, calls)
	}
}

func TestRedisCacheDisabledWithoutClient(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, NewRedisCache(cacheConfig(), nil))
	rec := serve(e, http.MethodGet, "/x")
	if rec.Header().Get("X-Cache") != "" || rec.Body.String() != "ok" {
		t.Fatalf("nil client should pass through, got %q %q", rec.Header().Get("X-Cache"), rec.Body.String())
	}
}

func TestPurgeCacheOnWrite(t *testing.T) {
	rdb := newRedis(t)
	cfg := cacheConfig()
	e := echo.New()
	price := "12.99"
	e.GET("/api/showtimes", func(c echo.Context) error {
		return c.String(http.StatusOK, price)
	}, NewRedisCache(cfg, rdb))
	admin := e.Group("/api/admin", PurgeCacheOnWrite(cfg, rdb))
	admin.PATCH("/showtimes/:id", func(c echo.Context) error {
		if c.Param("id") != "1" {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		price = "15.00"
		return c.NoContent(http.StatusOK)
	})

	serve(e, http.MethodGet, "/api/showtimes")
	if rec := serve(e, http.MethodGet, "/api/showtimes"); rec.Header().Get("X-Cache") != "HIT" {
		t.Fatal("expected warm cache")
	}

	serve(e, http.MethodPatch, "/api/admin/showtimes/2")
	if rec := serve(e, http.MethodGet, "/api/showtimes"); rec.Header().Get("X-Cache") != "HIT" {
		t.Fatal("failed write should not purge")
	}

	serve(e, http.MethodPatch, "/api/admin/showtimes/1")
	rec := serve(e, http.MethodGet, "/api/showtimes")
	if rec.Header().Get("X-Cache") != "MISS" || rec.Body.String() != "15.00" {
		t.Fatalf("after write got %s %q, want fresh MISS", rec.Header().Get("X-Cache"), rec.Body.String())
	}
}

func TestPurgeOnlyTouchesPrefix(t *testing.T) {
	rdb := newRedis(t)
	ctx := context.Background()
	rdb.Set(ctx, "test:cache:a", "1", 0)
	rdb.Set(ctx, "test:cache:b", "1", 0)
	rdb.Set(ctx, "test:rl:x", "1", 0)

	n, err := Purge(ctx, rdb, "test:cache")
	if err != nil || n != 2 {
		t.Fatalf("Purge = %d, %v; want 2, nil", n, err)
	}
	if rdb.Exists(ctx, "test:rl:x").Val() != 1 {
		t.Fatal("key outside prefix was deleted")
	}
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "test:rl",
	}
	e := echo.New()
	e.POST("/api/contact", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, NewTokenBucket(cfg, rdb))

	post := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = ip + ":4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := post("192.0.2.1"); rec.Code != http.StatusCreated {
			t.Fatalf("request %d: code %d", i, rec.Code)
		}
	}
	rec := post("192.0.2.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request code = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" || rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("missing rate limit headers: %v", rec.Header())
	}
	if rec := post("192.0.2.2"); rec.Code != http.StatusCreated {
		t.Fatalf("other client should have its own bucket, got %d", rec.Code)
	}
}

func TestBuildRateKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	req.RemoteAddr = "198.51.100.7:1"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/contact")

	cases := map[string]string{
		"ip":       "rl:ip:198.51.100.7",
		"route":    "rl:route:POST /api/contact",
		"ip_route": "rl:ip:198.51.100.7:route:POST /api/contact",
	}
	for strategy, want := range cases {
		got := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}, c)
		if got != want {
			t.Fatalf("%s: key = %q, want %q", strategy, got, want)
		}
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[]`))
	if err != nil {
		t.Fatal(err)
	}
	status, got, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || got.Get("Content-Type") != "application/json" || string(body) != "[]" {
		t.Fatalf("decode = %d %v %q %v", status, got, body, ok)
	}
	if _, _, _, ok := decodePayload([]byte{1, 2}); ok {
		t.Fatal("short payload should not decode")
	}
}

// A miss whose handler is still running when an admin write purges the
// cache must not serve its stale body to later readers.
func TestRedisCacheIgnoresResponseFinishedAfterPurge(t *testing.T) {
	rdb := newRedis(t)
	cfg := cacheConfig()
	e := echo.New()
	body := "old"
	first := true
	e.GET("/api/showtimes", func(c echo.Context) error {
		out := body
		if first {
			first = false
			body = "new"
			if _, err := Purge(c.Request().Context(), rdb, cfg.Prefix); err != nil {
				t.Fatalf("Purge: %v", err)
			}
		}
		return c.String(http.StatusOK, out)
	}, NewRedisCache(cfg, rdb))

	if rec := serve(e, http.MethodGet, "/api/showtimes"); rec.Body.String() != "old" {
		t.Fatalf("first body = %q", rec.Body.String())
	}
	rec := serve(e, http.MethodGet, "/api/showtimes")
	if rec.Header().Get("X-Cache") != "MISS" || rec.Body.String() != "new" {
		t.Fatalf("second read = %s %q, want fresh MISS", rec.Header().Get("X-Cache"), rec.Body.String())
	}
}

func TestPurgeBumpsGeneration(t *testing.T) {
	rdb := newRedis(t)
	ctx := context.Background()
	for i := 1; i <= 2; i++ {
		if _, err := Purge(ctx, rdb, "test:cache"); err != nil {
			t.Fatal(err)
		}
		if got, _ := rdb.Get(ctx, generationKey("test:cache")).Int64(); got != int64(i) {
			t.Fatalf("generation after %d purges = %d", i, got)
		}
	}
}
