// Package article implements the Article Store.
//
// The store:
//   - Holds headlines first seen on the current UTC day
//   - Rejects a headline whose title is already stored
//   - Evicts the oldest headline once capacity is reached
//   - Is cleared wholesale at UTC date rollover
package article
