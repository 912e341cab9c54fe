// Package entities provides the core domain types that cross the boundary:
// the decoded request handed to domain logic and the Ok/Err envelope that
// carries every response back to the caller.
package entities
