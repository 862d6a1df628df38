package instance

import "github.com/medimall/medimall-backend/pkg/env"

// GetID identifies the running process in logs. Platform-provided names are
// used when no explicit id is configured.
func GetID() string {
	return env.First("local", "MEDIMALL_INSTANCE_ID", "DYNO", "HOSTNAME")
}
