package ganeti

// Credentials authenticate against the RAPI with HTTP basic auth.
type Credentials struct {
	User     string
	Password string
	// CACert is a PEM bundle path. Empty uses the system roots.
	CACert string
}
