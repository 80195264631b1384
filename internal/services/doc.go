// Package services holds the application services that sit between the HTTP
// transport and the pipeline/analytics packages. DatasetService owns the
// single in-process canonical table, the analytics memo cache and the
// derived-result facade the handlers call into.
package services
