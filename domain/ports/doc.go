// Package ports defines the interfaces the boundary depends on.
// Domain logic and envelope validation are plugged in through these ports,
// so the boundary itself never depends on a concrete processor.
package ports
