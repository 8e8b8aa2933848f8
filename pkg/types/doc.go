// Package types defines the rolling-stock entities of a consist (wagons and
// locomotives), the driver configuration, and the standard error values shared
// by the chain and train packages.
//
// Wagons here are plain values. Their position in a chain is held by
// consist.Yard, never by the wagon itself.
package types
