// Package options turns one canonical schedule into the fixed set of
// alternatives shown side by side to the clinician.
//
// Each alternative is produced by a Strategy. The built-in strategies are
// identity, truncate and rotate; a Plan lists which strategy fills each of
// the OptionCount slots and is built through the factory registry so the
// plan can come from configuration. Derive is pure: the same canonical
// schedule and selection index always yield identical options.
package options
