package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/onboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.BaseURL, convey.ShouldEqual, config.DefaultBaseURL)
			convey.So(cfg.BaseURLDefaulted(), convey.ShouldBeTrue)
			convey.So(cfg.RequestTimeout, convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.SessionBackend, convey.ShouldEqual, config.SessionFile)
			convey.So(cfg.SessionFile, convey.ShouldNotBeEmpty)
			convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, 10<<20)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configs", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"relative base url", func(c *config.Config) { c.BaseURL = "localhost:8000" }},
			{"zero timeout", func(c *config.Config) { c.RequestTimeout = 0 }},
			{"unknown backend", func(c *config.Config) { c.SessionBackend = "etcd" }},
			{"redis without url", func(c *config.Config) { c.SessionBackend = config.SessionRedis }},
			{"file without path", func(c *config.Config) { c.SessionFile = "" }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"no upload concurrency", func(c *config.Config) { c.UploadConcurrency = 0 }},
			{"negative session ttl", func(c *config.Config) { c.SessionTTL = -time.Second }},
			{"zero refresh interval", func(c *config.Config) { c.RefreshInterval = 0 }},
			{"non-positive upload cap", func(c *config.Config) { c.MaxUploadBytes = 0 }},
		}
		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" is rejected", func() {
				cfg := config.New(context.Background())
				tc.mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then the memory backend needs nothing else", func() {
			cfg := config.New(context.Background())
			cfg.SessionBackend = config.SessionMemory
			cfg.SessionFile = ""
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
