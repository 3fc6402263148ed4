/*
Package domain contains the core data model of the Gibbs reactor.

It defines the material stream snapshot, the lifecycle phases of a unit
operation, the kinded error taxonomy and the observer hooks. This package is
kept pure and free of external dependencies like I/O or persistence.

# Key Entities

  - MaterialState: name, molar composition, temperature and pressure of a stream.
  - Phase: where a unit operation sits in its lifecycle (uninitialized, ready, calculated).
  - Error: a failure tagged with a Kind (InvalidArgument, InvalidOperation, ...).
  - LifecycleHooks: callbacks invoked at lifecycle transitions and solver iterations.
  - RunRecord: the persisted outcome of one successful calculation.
*/
package domain
