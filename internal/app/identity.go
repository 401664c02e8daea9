package app

import (
	"fmt"
	"os"
	"os/user"
)

// Identity returns the "<host>:<user>" value stamped on catalog entries and
// events. A non-empty override is returned unchanged.
func Identity(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	host, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("reading hostname: %w", err)
	}

	name, err := currentUser()
	if err != nil {
		return "", err
	}
	return host + ":" + name, nil
}

func currentUser() (string, error) {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username, nil
	}
	// user.Current fails without cgo when the user is missing from /etc/passwd.
	for _, env := range []string{"USER", "LOGNAME"} {
		if v := os.Getenv(env); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("cannot determine current user")
}
