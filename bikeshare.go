// Package bikeshare is an interactive explorer for bikeshare trip data.
// Descriptive statistics for one city at a time.
//
// Usage:
//
//	go run ./cmd/bikeshare
//	go run ./cmd/bikeshare schema chicago
//	go run ./cmd/bikeshare export washington washington.parquet --month june
//	go run ./cmd/bikeshare chart chicago hours.png
//
// The dataset package loads a city's trip file (CSV or Parquet) into an
// Arrow record. The engine package computes the travel-time, station,
// duration and user statistics through the engine.View interface, and the
// report package prints them. The session package drives the prompt →
// load → report → restart loop.
//
// Nothing is persisted between runs; every cycle loads its table afresh.
package bikeshare
