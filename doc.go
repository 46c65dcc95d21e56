// Package rondo contains the core components of Rondo, a backend-agnostic
// layer for partitioned transformation of tabular data. This root package
// defines the contracts shared by every execution backend - dataframes,
// schemas, partitioning and transforms - and is an excellent overview of
// Rondo's key concepts. Concrete implementations live in subpackages.
package rondo
