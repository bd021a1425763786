// Package constants holds identifiers shared between configuration and wiring.
package constants

const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Newsletter dispatch transports.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
	PubSubProviderAMQP   = "amqp"
)
