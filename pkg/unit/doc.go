/*
Package unit hosts a set of named reactors for long-running processes.

The Manager serializes access per unit across goroutines (and, with a
DistributedLocker, across replicas) and persists every successful
calculation as a RunRecord in a RunStore.
*/
package unit
