// Package cards implements the card actions: copy the active note's card to
// a sink, export it into the vault with a back-reference, and the batch
// actions that render or number every tagged note.
package cards
