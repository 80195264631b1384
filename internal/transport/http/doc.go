// Package http contains the HTTP handlers that expose the ingestion
// pipeline and analytics engines to the presentation layer. Handlers bind
// and validate request parameters, delegate to the dataset service, and
// render plain tabular/scalar results; no chart or widget state lives here.
package http
