// Package domain contains the core business entities and rules of the
// application: the task entity, its validation bounds, and the status
// state machine. It is independent of any specific infrastructure or
// delivery mechanism.
package domain
