// Package dynamo provides the core value types shared by the particle
// simulation packages.
//
//   - [State]: position, velocity and material of one particle
//   - [Environment]: gravity, wind, drag and chaotic forcing for a step
//   - [ColorOf]: the speed-to-color projection handed to renderers
//   - [ConfigError], [SimulationError]: error types wrapping the sentinel errors
//
// States are plain values. Every step function in the sibling packages takes a
// State and returns a new one; nothing in this package holds mutable state.
//
// # Validation
//
// [State.Validate] and [Environment.Validate] reject non-finite vectors,
// non-positive mass and restitution or friction outside [0, 1]:
//
//	if err := env.Validate(); err != nil {
//	    var cfgErr *dynamo.ConfigError
//	    if errors.As(err, &cfgErr) {
//	        fmt.Println("rejected", cfgErr.Field)
//	    }
//	}
package dynamo
