package misc

import "os"

func GetServiceName() string {
	name := os.Getenv("SERVICE_NAME")
	if name == "" {
		return "caster"
	}
	return name
}

func GetServiceInstance() string {
	instance := os.Getenv("SERVICE_INSTANCE")
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return "unknown"
		}
		return host
	}
	return instance
}
