package models

// Checkpoint is the small out-of-band record that gates reconciliation:
// the stored credential and the opaque marker the server issued the last
// time local and remote state agreed. Marker equality is all that is ever
// compared; the marker carries no ordering.
type Checkpoint struct {
	Credential string
	Kind       string
	Marker     string
}

// Authenticated reports whether a credential is stored at all.
func (c *Checkpoint) Authenticated() bool {
	return c != nil && c.Credential != ""
}
