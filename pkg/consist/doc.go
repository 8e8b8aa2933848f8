// Package consist implements wagon chains and the trains that own them.
//
// A Yard is an arena of wagons addressed by stable Handles. Each wagon in the
// Yard holds optional next and previous handles, and the Yard primitives
// (AttachTo, RemoveFromChain, ReverseChain, ...) keep those links mutually
// consistent. A Train owns at most one chain through the handle of its first
// wagon and is the only place where domain rules are checked: one wagon kind
// per train and no more wagons than the locomotive can pull. The exported
// primitives work on loose wagons only; a wagon in a train's chain changes
// place through Train operations.
//
// Handles are meaningful only in the Yard that issued them.
//
// Train operations either succeed completely or leave every chain involved
// untouched and report false. Yard primitives report structural misuse as a
// *ChainError.
//
// Nothing in this package is safe for concurrent use. Trains that share a
// Yard must be serialised by the caller.
package consist
