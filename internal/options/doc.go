// Package options implements the Options Snapshot Fetcher component.
//
// The fetcher:
//   - Pulls the underlying close and the option chain closes for one day
//   - Falls back to previous business days when a day has no data
//   - Publishes each complete snapshot into a single shared Slot
//
// Contract identifiers use OCC symbology: root, YYMMDD expiry, C or P, and
// the strike times 1000 as eight digits (e.g. SPXW240105C04750000).
package options
