// Package assets implements the version registry for data and model assets.
//
// Registration sanitizes the run's write branch, stores the payload plus a
// version record under it, and moves the asset's latest marker. Retrieval
// resolves the read scope first: production deployments read their own
// branch, everything else honors the project's dev-assets override before
// falling back to the write branch.
package assets
