// Package config loads service configuration from config.yml, a .env file
// and the process environment, in that order of precedence.
//
// Environment variables are bound from the config struct itself: each
// mapstructure key becomes an upper-case name with dots replaced by
// underscores, so CONVERTIO_API_KEY fills convertio.api_key.
//
//	var cfg AppConfig
//	err := config.LoadConfig("voicescribe", &cfg)
//	cfg.ApplyDefaults()
//	err = cfg.Validate()
package config
