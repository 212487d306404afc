// Package config handles configuration loading and validation from
// environment variables and an optional config file. It gives the rest of
// the application type-safe access to server and database settings.
package config
