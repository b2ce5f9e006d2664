package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/courtquote/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.Store, convey.ShouldEqual, "memory")
			convey.So(cfg.QuotationPrefix, convey.ShouldEqual, "NXR")
			convey.So(cfg.NumberingMaxRetries, convey.ShouldEqual, 5)
			convey.So(cfg.PersistenceTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.RenderWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.GSTPercent, convey.ShouldEqual, 18)
			convey.So(cfg.RecomputeEquipment, convey.ShouldBeFalse)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given invalid settings", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"store", func(c *config.Config) { c.Store = "postgres" }},
			{"numeric prefix", func(c *config.Config) { c.QuotationPrefix = "N1" }},
			{"empty prefix", func(c *config.Config) { c.QuotationPrefix = "" }},
			{"retries", func(c *config.Config) { c.NumberingMaxRetries = 0 }},
			{"timeout", func(c *config.Config) { c.PersistenceTimeoutMS = 0 }},
			{"list limit", func(c *config.Config) { c.MaxListLimit = 0 }},
			{"render workers", func(c *config.Config) { c.RenderWorkers = 0 }},
			{"cache size", func(c *config.Config) { c.DocumentCacheSize = -1 }},
			{"negative gst", func(c *config.Config) { c.GSTPercent = -1 }},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)

			convey.Convey("Then "+tc.name+" should be rejected", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
