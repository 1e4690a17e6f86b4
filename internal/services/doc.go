// Package services defines shared service infrastructure: the sentinel error
// taxonomy used to classify failures from external collaborators, and context
// helpers that thread correlation identifiers through a generation pass.
//
// Subpackages hold the concrete collaborator clients (jellyfin, spotify).
package services
