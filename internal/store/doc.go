// Package store defines the persistence interfaces for tasks. The
// interfaces abstract the underlying storage so the service layer stays
// independent of the database technology, and the sentinel errors here
// give callers a stable vocabulary for persistence failures.
package store
