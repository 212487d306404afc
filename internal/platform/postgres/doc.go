// Package postgres implements the store interfaces on PostgreSQL. It owns
// query construction, driver error mapping, and the embedded schema
// migrations applied at startup.
package postgres
