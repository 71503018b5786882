package domain

// Identity of a caller, resolved from a verified token or the identity collaborator.
type Identity struct {
	Subject     string            `json:"subject"`
	DisplayName string            `json:"display_name"`
	Claims      map[string]string `json:"claims,omitempty"`
}
