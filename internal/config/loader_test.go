package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/reelrank/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Delimiter, convey.ShouldEqual, "|")
				convey.So(cfg.MaxLimit, convey.ShouldEqual, 100)
				convey.So(cfg.RecommendationCount, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("REELRANK_ADDR", ":8080")
			_ = os.Setenv("REELRANK_MOVIES_FILE", "/data/movies.txt")
			_ = os.Setenv("REELRANK_RATINGS_FILE", "/data/ratings.txt")
			_ = os.Setenv("REELRANK_MAX_LIMIT", "25")
			_ = os.Setenv("REELRANK_RECOMMENDATION_COUNT", "5")
			_ = os.Setenv("REELRANK_LOG_FORMAT", "json")
			_ = os.Setenv("REELRANK_DATA_DIR", "/data")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MoviesFile, convey.ShouldEqual, "/data/movies.txt")
				convey.So(cfg.RatingsFile, convey.ShouldEqual, "/data/ratings.txt")
				convey.So(cfg.MaxLimit, convey.ShouldEqual, 25)
				convey.So(cfg.RecommendationCount, convey.ShouldEqual, 5)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.DataDir, convey.ShouldEqual, "/data")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# reelrank settings
addr: ":9090"
movies_file: "movies.txt"
ratings_file: "ratings.txt"
delimiter: ","
max_limit: 50
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("REELRANK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.MoviesFile, convey.ShouldEqual, "movies.txt")
				convey.So(cfg.RatingsFile, convey.ShouldEqual, "ratings.txt")
				convey.So(cfg.Delimiter, convey.ShouldEqual, ",")
				convey.So(cfg.MaxLimit, convey.ShouldEqual, 50)
				convey.So(cfg.RecommendationCount, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
max_limit: 50
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("REELRANK_CONFIG", tmpFile)
			_ = os.Setenv("REELRANK_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxLimit, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("REELRANK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("REELRANK_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the YAML file empties addr", func() {
			tmpFile := createTempConfigFile(`addr: ""`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("REELRANK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "Addr")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When max_limit is out of range", func() {
			_ = os.Setenv("REELRANK_MAX_LIMIT", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a numeric variable is not a number", func() {
			_ = os.Setenv("REELRANK_MAX_LIMIT", "lots")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"REELRANK_CONFIG",
		"REELRANK_ADDR",
		"REELRANK_LOG_LEVEL",
		"REELRANK_LOG_FORMAT",
		"REELRANK_MOVIES_FILE",
		"REELRANK_RATINGS_FILE",
		"REELRANK_DATA_DIR",
		"REELRANK_DELIMITER",
		"REELRANK_MAX_LIMIT",
		"REELRANK_RECOMMENDATION_COUNT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "reelrank-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
