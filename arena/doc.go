// Package arena provides reference-stable storage for long-lived values.
//
// An Arena hands out pointers that never move. A RefMap layers an insert-once
// key index over an Arena: the first value registered for a key wins, and
// every later lookup returns that same pointer. Values leave a RefMap only all
// at once, either by Drain (ownership moves to another scope) or by Release
// (the whole scope is dropped).
package arena
