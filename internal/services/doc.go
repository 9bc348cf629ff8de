// Package services holds cross-cutting helpers shared by the controller,
// worker, and API layers: the sentinel error taxonomy with classification
// helpers, and context annotations used for structured logging correlation.
package services
