// Package errors provides structured errors for the dungeon engine.
//
// Errors carry a Code, a message, an optional cause and metadata:
//
//	err := errors.InvalidArgumentf("unknown race %q", race)
//	err := errors.NoSpace("no free tile next to hoard").
//	    WithMeta("row", row).
//	    WithMeta("col", col)
//
// Wrapping keeps the code of the wrapped error:
//
//	if err := sampler.Place(); err != nil {
//	    return errors.Wrap(err, "place stairs")
//	}
//
// Placement code never loops forever; when every candidate tile is taken it
// returns an error with CodeResourceExhausted, which IsNoSpace recognises.
// Entity factories never return errors: an unknown type produces an
// under-populated entity instead.
package errors
