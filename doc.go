/*
Package gibbs is an equilibrium reactor unit operation driven through a strict lifecycle.

The reactor computes a product composition by relaxing a feed toward lower
Gibbs free energy, using chemical potentials supplied by a pluggable
thermodynamic model. A host (process simulator, CLI, HTTP or MCP adapter)
drives it through the standard unit-operation lifecycle.

# Concept

The unit operation is a small state machine:

	uninitialized --Initialize--> ready --Calculate--> calculated
	      ^                          |                     |
	      +--------Terminate---------+---------------------+

Initialize requires an attached model. Validate checks the feed and the
temperature/pressure setpoints. Calculate validates, runs the solver and
exposes the product. Terminate drops the ready state but keeps the
configuration. Every failure is a *domain.Error tagged with a Kind.

# Usage

	r := gibbs.New(gibbs.WithName("R-101"))
	if err := r.UseModel("molefraction", nil); err != nil {
		log.Fatal(err)
	}
	r.SetFeed(domain.MaterialState{
		Name:        "Feed",
		Composition: domain.Composition{"A": 1, "B": 2},
		Temperature: 300,
		Pressure:    101325,
	})
	r.SetTemperature(500)
	r.SetPressure(2e5)

	if err := r.Initialize(); err != nil {
		log.Fatal(err)
	}
	if err := r.Calculate(); err != nil {
		log.Fatal(err)
	}
	product, _ := r.Product()
	fmt.Println(product.Composition)
*/
package gibbs
