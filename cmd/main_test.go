package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/roster/internal/config"
	"github.com/okian/roster/pkg/logger"
)

func init() {
	_ = logger.Init(logger.WithOutput(os.Stderr))
}

func TestNewStore(t *testing.T) {
	convey.Convey("Given a loaded configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("When the memory backend is selected", func() {
			store, err := newStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = store.Close() }()

			convey.Convey("Then a memory store is returned", func() {
				convey.So(store.Backend(), convey.ShouldEqual, "memory")
			})
		})

		convey.Convey("When the sql backend is selected with sqlite", func() {
			cfg.Store = config.StoreSQL
			cfg.SQLDriver = config.DriverSQLite
			cfg.SQLDSN = filepath.Join(t.TempDir(), "roster.db")

			store, err := newStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = store.Close() }()

			convey.Convey("Then the store reports the driver", func() {
				convey.So(store.Backend(), convey.ShouldEqual, "sqlite")
			})
		})

		convey.Convey("When the redis backend is selected", func() {
			mr := miniredis.RunT(t)
			cfg.Store = config.StoreRedis
			cfg.RedisURL = "redis://" + mr.Addr() + "/0"

			store, err := newStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = store.Close() }()

			convey.Convey("Then the store reports redis", func() {
				convey.So(store.Backend(), convey.ShouldEqual, "redis")
			})
		})

		convey.Convey("When the backend is unknown", func() {
			cfg.Store = "etcd"
			store, err := newStore(ctx, cfg)

			convey.Convey("Then an invalid config error is returned", func() {
				convey.So(store, convey.ShouldBeNil)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "etcd")
			})
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given a handler wired over the memory store", t, func() {
		ctx := context.Background()
		cfg := config.New()
		store, err := newStore(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)

		handler, svc, err := newHandler(ctx, cfg, store, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc, convey.ShouldNotBeNil)
		defer func() { _ = svc.Close() }()

		serve := func(method, target, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, target, strings.NewReader(body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec
		}

		convey.Convey("When creating and listing a player", func() {
			created := serve(http.MethodPost, "/rest/players",
				`{"name":"Ava","title":"Warden","race":"ELF","profession":"DRUID","birthday":1328227200000,"experience":1000}`)
			listed := serve(http.MethodGet, "/rest/players", "")
			counted := serve(http.MethodGet, "/rest/players/count", "")

			convey.Convey("Then the api routes are served", func() {
				convey.So(created.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(listed.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(listed.Body.String(), convey.ShouldContainSubstring, `"name":"Ava"`)
				convey.So(strings.TrimSpace(counted.Body.String()), convey.ShouldEqual, "1")
			})
		})

		convey.Convey("When requesting the documentation routes", func() {
			docs := serve(http.MethodGet, "/api-docs", "")
			openapi := serve(http.MethodGet, "/openapi.yaml", "")

			convey.Convey("Then both are served by the same router", func() {
				convey.So(docs.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(openapi.Code, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When the timezone is invalid", func() {
			cfg.Timezone = "Mars/Olympus"
			_, _, err := newHandler(ctx, cfg, store, logger.Get())

			convey.Convey("Then wiring fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestConfigFromEnvironment(t *testing.T) {
	convey.Convey("Given ROSTER_ environment variables", t, func() {
		t.Setenv("ROSTER_ADDR", ":9090")
		t.Setenv("ROSTER_DEFAULT_PAGE_SIZE", "5")

		convey.Convey("When loading configuration", func() {
			cfg, err := config.Load(context.Background())

			convey.Convey("Then the overrides are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DefaultPageSize, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When the address is cleared", func() {
			t.Setenv("ROSTER_ADDR", "")
			cfg, err := config.Load(context.Background())

			convey.Convey("Then configuration loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("When it runs until its context expires", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.Convey("Then it returns without panicking", func() {
				convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When updating once", func() {
			convey.Convey("Then it does not panic", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			})
		})
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	convey.Convey("Given a configuration bound to an ephemeral port", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"

		convey.Convey("When the root context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg, logger.Get()) }()
			time.Sleep(50 * time.Millisecond)
			cancel()

			convey.Convey("Then run shuts down cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					convey.So("run did not return", convey.ShouldBeEmpty)
				}
			})
		})
	})
}
