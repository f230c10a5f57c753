package instance

import "os"

// GetID returns the process instance identifier used in log fields so
// overlapping workers can be told apart. WORKER_ID is set by the container
// orchestrator, DYNO by Heroku-style platforms.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	return "local"
}
