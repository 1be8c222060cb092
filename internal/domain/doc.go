// Package domain contains the core entities of the review status engine:
// static cards, per-user review records, and the transient values that
// move between the catalog, scheduler, write queue, and review store.
package domain
