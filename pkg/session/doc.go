// Package session keeps live edit documents between requests. Each Editor
// owns one parsed document and the dispatcher acting on it; the Manager
// creates editors from layouts and expires idle ones.
package session
