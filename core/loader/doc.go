// Package loader provides the feature loading system used by the serve command.
//
// Each feature implements the Feature interface, which defines its name, whether
// it is enabled and how it registers its routes.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager holds the registry of available features. Register adds a
// feature and LoadAll loads the enabled ones in registration order.
package loader
