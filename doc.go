// Package genson infers a structural schema from a batch of JSON documents
// and normalises each document against that schema, so that every row
// conforms to one common shape for ingestion into columnar analytic stores.
package genson
