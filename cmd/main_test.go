package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/courtquote/internal/adapters/repository"
	"github.com/okian/courtquote/internal/config"
	"github.com/okian/courtquote/internal/domain/catalog"
	"github.com/okian/courtquote/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

const createBody = `{
  "clientInfo": {"name": "Asha Rao", "email": "asha@example.com", "phone": "9800000000", "address": "12 MG Road"},
  "projectInfo": {"constructionType": "standard", "sport": "tennis"},
  "requirements": {"base": {"type": "concrete"}, "flooring": {"type": "acrylic"}}
}`

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.RenderWorkers = 1
	return cfg
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a service built from default configuration", t, func() {
		ctx := context.Background()
		cfg := testConfig()

		svc, err := newService(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		handler := newHandler(ctx, svc, cfg)

		convey.Convey("When a quotation is posted", func() {
			req := httptest.NewRequest(http.MethodPost, "/quotations", strings.NewReader(createBody))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			convey.Convey("Then it should be created with the configured prefix", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"quotationNumber":"NXR000001"`)
			})
		})

		convey.Convey("When the docs are requested", func() {
			req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("When the sports config is requested", func() {
			req := httptest.NewRequest(http.MethodGet, "/sports-config", http.NoBody)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "tennis")
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given broken configuration", t, func() {
		ctx := context.Background()

		convey.Convey("When the catalog file does not exist", func() {
			cfg := testConfig()
			cfg.CatalogPath = "/non/existent/catalog.yaml"

			_, err := newService(ctx, cfg)

			convey.Convey("Then the catalog error should surface", func() {
				convey.So(errors.Is(err, catalog.ErrCatalogUnavailable), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the store backend is unknown", func() {
			cfg := testConfig()
			cfg.Store = "postgres"

			_, err := newService(ctx, cfg)

			convey.Convey("Then the backend error should surface", func() {
				convey.So(errors.Is(err, repository.ErrUnknownBackend), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the listen address is invalid", func() {
			cfg := testConfig()
			cfg.Addr = "no-port"

			cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			convey.Convey("Then run should return the listen error", func() {
				convey.So(run(cctx, cfg), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestRunShutdown(t *testing.T) {
	convey.Convey("Given a running server", t, func() {
		cfg := testConfig()
		cfg.Addr = "127.0.0.1:0"

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		convey.Convey("When the context is cancelled", func() {
			err := run(ctx, cfg)

			convey.Convey("Then it should shut down cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When the system metrics updater runs until timeout", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})

		convey.Convey("When system metrics are updated", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("When service metrics are updated", func() {
			ctx := context.Background()
			svc, err := newService(ctx, testConfig())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then it should work before and after start", func() {
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer svc.Stop()
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			})
		})
	})
}
