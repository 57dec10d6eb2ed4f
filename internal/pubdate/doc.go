// Package pubdate normalizes feed publication dates.
//
// Feeds publish dates in many shapes. Parse tries an ordered list of layouts
// and returns the first match as a UTC instant. The order of DefaultLayouts is
// a priority policy: a looser layout placed earlier can claim strings meant
// for a stricter one.
package pubdate
