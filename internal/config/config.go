package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT" validate:"required,numeric"`
	LogLevel        string        `mapstructure:"LOG_LEVEL" validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFile         string        `mapstructure:"LOG_FILE"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	GeoapifyAPIKey  string        `mapstructure:"GEOAPIFY_API_KEY"`
	GeoapifyBaseURL string        `mapstructure:"GEOAPIFY_BASE_URL" validate:"required,url"`
	UpstreamTimeout time.Duration `mapstructure:"UPSTREAM_TIMEOUT" validate:"gte=0"`
	ProxyURL        string        `mapstructure:"PROXY_URL" validate:"required,url"`
	DebounceDelay   time.Duration `mapstructure:"DEBOUNCE_DELAY" validate:"gt=0"`
	Map             MapConfig     `mapstructure:",squash"`
}

// MapConfig describes the base layer and initial view handed to map front ends.
type MapConfig struct {
	TileURL         string  `mapstructure:"TILE_URL" json:"tile_url" validate:"required"`
	TileAttribution string  `mapstructure:"TILE_ATTRIBUTION" json:"attribution"`
	TileMaxZoom     int     `mapstructure:"TILE_MAX_ZOOM" json:"max_zoom" validate:"gte=1,lte=30"`
	DefaultLat      float64 `mapstructure:"MAP_DEFAULT_LAT" json:"default_lat" validate:"gte=-90,lte=90"`
	DefaultLon      float64 `mapstructure:"MAP_DEFAULT_LON" json:"default_lon" validate:"gte=-180,lte=180"`
	DefaultZoom     int     `mapstructure:"MAP_DEFAULT_ZOOM" json:"default_zoom" validate:"gte=0,lte=30"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("GEOAPIFY_API_KEY", "")
	v.SetDefault("GEOAPIFY_BASE_URL", "https://api.geoapify.com")
	v.SetDefault("UPSTREAM_TIMEOUT", "0s")
	v.SetDefault("PROXY_URL", "http://localhost:8080")
	v.SetDefault("DEBOUNCE_DELAY", "800ms")
	v.SetDefault("TILE_URL", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("TILE_ATTRIBUTION", `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`)
	v.SetDefault("TILE_MAX_ZOOM", 25)
	v.SetDefault("MAP_DEFAULT_LAT", 51.505)
	v.SetDefault("MAP_DEFAULT_LON", -0.09)
	v.SetDefault("MAP_DEFAULT_ZOOM", 15)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
