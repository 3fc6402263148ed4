/*
Package equilibrium implements the fixed-step Gibbs relaxation used by the reactor.

The solver nudges a feed composition toward lower Gibbs energy using
chemical-potential feedback from a ports.ThermoModel:

	lambda = mean(mu)
	n_i    = max(0, n_i - StepSize*(mu_i - lambda))
	n_i   *= total / sum(n)

repeated exactly Iterations times. There is no convergence test; the fixed
iteration count and step size make the output reproducible for a
deterministic model. It is not a certified equilibrium solver.
*/
package equilibrium
