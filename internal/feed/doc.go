// Package feed implements the Feed Poller component.
//
// The Feed Poller:
//   - Polls every configured RSS source each cycle (default every 5s)
//   - Skips a failing source without affecting the others
//   - Keeps only entries published on the current UTC day
//   - Appends new titles to the Article Store
package feed
