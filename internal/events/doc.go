// Package events defines the task lifecycle event payloads pushed to
// subscribers and the Broadcaster interface the task service emits through.
//
// The service builds an event from the post-mutation (or pre-deletion) task
// snapshot and hands it to a Broadcaster after the persistence write is
// acknowledged. Delivery is best-effort: a Broadcaster never reports failure
// back to the mutating caller.
package events
