package instance

import "os"

// GetID identifies the running process in logs. The platform dyno name wins
// over the container hostname.
func GetID() string {
	for _, env := range []string{"DYNO", "FUNDEDPAY_INSTANCE_ID", "HOSTNAME"} {
		if id := os.Getenv(env); id != "" {
			return id
		}
	}
	return "local"
}
