// Package marketday resolves market days and drives date-fallback retry
// chains.
//
// A market day is Monday through Friday. Holidays are not modelled: a chain
// that lands on a holiday simply fails that attempt and falls back again.
package marketday
