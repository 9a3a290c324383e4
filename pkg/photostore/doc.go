// Package photostore persists uploaded food photos for the short window
// where an analysis can be re-run with corrected input. Two backends
// exist: S3 (or any S3-compatible service) for production and the local
// filesystem for development.
package photostore
