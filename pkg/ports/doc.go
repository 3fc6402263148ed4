/*
Package ports defines the interfaces at the boundary of the Gibbs reactor.

These interfaces decouple the unit operation from its collaborators, allowing
the same reactor to be driven by different hosts, fed by different
thermodynamic models, and persisted to different storage backends.

# Key Interfaces

  - ThermoModel: chemical potentials and Gibbs energy of a material state (consumed).
  - UnitOperation: the ordered lifecycle a host drives (exposed).
  - RunStore: persists the outcome of successful calculations.
  - DistributedLocker: serializes access to a unit across replicas.
*/
package ports
