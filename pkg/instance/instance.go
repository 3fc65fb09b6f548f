package instance

import "github.com/angelmondragon/ecofinds-backend/pkg/env"

// GetID returns the process identifier attached to startup logs.
func GetID() string {
	return env.Get("DYNO", env.Get("HOSTNAME", "local"))
}
