// Package config provides a type-safe, cached loader for environment-based
// configuration.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: values
// are read from the process environment (seeded from a .env file when one
// exists) and parsed into annotated structs. Each configuration type is
// parsed at most once per process and cached, so packages can load their own
// config independently without repeated parsing.
package config
