// Package dispatch routes clicks to the row engine through one long-lived
// dispatcher per document. A classification table maps affordance markers
// (btn-remove, btn-up, btn-down) to engine operations, and add triggers are
// bound by id at initialization.
package dispatch
