// Package domain contains the core concepts shared by the composer, the
// compressor and the size estimator. It stays free of transport (HTTP) and
// infrastructure (Redis) concerns.
package domain
