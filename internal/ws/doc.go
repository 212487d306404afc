// Package ws owns the live set of subscriber connections and the broadcast
// fan-out of task lifecycle events.
//
// The Registry is the single shared mutable structure in the system. It
// tolerates concurrent register/unregister calls from the broadcast path and
// from each connection's own disconnect path, and iterates a point-in-time
// snapshot during broadcast so membership changes mid-delivery cannot corrupt
// the loop or duplicate a delivery.
package ws
