// Package services implements the driving ports on top of the driven ones.
//
// The indexing pipeline is Extract -> Hasher -> dedup -> persist, shared by
// the Indexer (backfill windows) and the Listener (live messages). All use
// of the platform session goes through one SessionGate.
package services
