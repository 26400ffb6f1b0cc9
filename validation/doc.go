// Package validation validates configuration and input structs using
// struct tags.
//
//	type Config struct {
//	    APIKey string `mapstructure:"api_key" validate:"required"`
//	}
//	err := validation.Validate(cfg)
//
// Field names in error messages follow the mapstructure (or json) tag so
// they match the keys users write in config.yml.
package validation
