// Package rows implements the repeating-row list editor: a registry that
// classifies row elements by kind marker and resolves their containers, and
// an engine that adds, removes and reorders rows while keeping every
// container non-empty and every ordered row's displayed number equal to its
// position plus one.
//
// Operations never return errors. A guard that prevents a change (removing
// the last row, moving past an edge, adding without a template row) yields a
// Result with Applied set to false.
package rows
