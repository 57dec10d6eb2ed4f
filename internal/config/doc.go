// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Variables may also come from a .env file loaded with LoadDotEnv before the
// YAML is read, so Alpaca credentials can live outside the config file.
package config
