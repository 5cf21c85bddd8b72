// Package textmark implements the text transforms applied to task content.
//
// All transforms are pure and idempotent: applying one twice yields the
// same string as applying it once, and each has a matching detector so
// callers can skip redundant updates.
package textmark
