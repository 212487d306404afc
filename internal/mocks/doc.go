// Package mocks provides centralized test doubles shared across packages.
//
// Instead of defining inline fakes in individual test files, the in-memory
// store and the recording broadcaster live here so service and handler tests
// exercise the same behavior.
//
// Usage:
//
//	import "github.com/dmelnik/taskboard-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    taskStore := mocks.NewMemoryTaskStore()
//	    broadcaster := mocks.NewRecordingBroadcaster()
//	    // wire them into the component under test...
//	}
//
// When adding a new mock to this package name the file after the interface
// being mocked and document any helper methods it exposes.
package mocks
