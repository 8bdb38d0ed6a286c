// Package layout declares edit forms as sets of repeating-row containers.
// Layouts are plain data: a container names its id, the row-kind marker its
// rows carry, whether the rows are ordered, the add trigger bound to it, and
// the field slots of one row. Layouts load from YAML or TOML files, optionally
// matched by doublestar glob patterns, and are validated with
// go-playground/validator. Watch keeps a catalog in step with its files.
package layout
