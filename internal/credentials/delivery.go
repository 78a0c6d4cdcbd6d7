package credentials

// Delivery decides how credentials reach an authenticated invocation.
type Delivery interface {
	// Args returns the arguments appended to the command line.
	Args(creds Credentials) []string
	// Payload returns the bytes written to standard input after spawn.
	// A nil payload means nothing is written.
	Payload(creds Credentials) []byte
}

// StdinDelivery passes the user name as an argument and pipes the password
// over standard input, terminated by the host line ending.
type StdinDelivery struct {
	defaultHostOS string
}

func NewStdinDelivery(defaultHostOS string) *StdinDelivery {
	return &StdinDelivery{
		defaultHostOS: defaultHostOS,
	}
}

// Args implements Delivery.
func (d *StdinDelivery) Args(creds Credentials) []string {
	return []string{"--non-interactive", "--username", creds.Username, "--password-from-stdin"}
}

// Payload implements Delivery.
func (d *StdinDelivery) Payload(creds Credentials) []byte {
	hostOS := creds.HostOS
	if hostOS == "" {
		hostOS = d.defaultHostOS
	}

	return []byte(creds.Password + LineEnding(hostOS))
}
