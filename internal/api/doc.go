// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It is the adapter between external clients and
// the task service, translating HTTP concerns into business operations and
// websocket subscriptions.
package api
