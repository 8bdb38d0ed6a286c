// Package dom is a thin layer over golang.org/x/net/html that gives the row
// editor the handful of browser DOM affordances it depends on: class markers,
// closest-ancestor lookup, element sibling navigation, deep cloning, form
// control values, and a focus tracker.
//
// Documents are live trees. Lookups always walk the current tree, so results
// reflect every mutation made through the package helpers or directly on the
// underlying *html.Node values.
package dom
