// Package evaluation keeps the per-project ledger of image evaluations and
// runs new evaluations through an external client.
//
// The ledger is a JSON array stored at projects/<name>/image_evals.json with
// one record per relative image name. It is always read and written whole.
// Read-modify-write cycles on the same project are serialized.
//
// Merging follows one rule: a new record for a name replaces the old one
// entirely. Records for other names are kept.
//
// When images move the ledger must follow them: Rename rewrites keys, Remove
// drops them, and Reconcile drops every record whose image no longer
// exists. Reconcile repairs any drift left behind by an interrupted
// multi-step mutation.
package evaluation
