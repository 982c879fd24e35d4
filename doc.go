// Package act drives a rate-paced synthetic I/O workload against a set
// of raw block devices: small random transaction reads and, when writes
// are enabled, constant-rate large-block sequential reads and writes
// modeling background defragmentation and write-back traffic.
//
// Run opens every configured device, applies the requested I/O scheduler
// mode, and drives the workload for the configured duration, returning
// once it completes, is cancelled, or detects an overload.
package act
