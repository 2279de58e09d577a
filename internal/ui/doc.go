// Package ui provides the Bubble Tea terminal interface for vitrina: the
// catalog table, the product form, the delete confirmation dialog and the
// image swap prompt. Views are read-only subscribers of the state store;
// every mutation goes through the mutate coordinator.
package ui
