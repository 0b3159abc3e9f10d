// Package core implements functionality shared across all extforge components.
package core

// CallerIdentity is the authenticated operator fact supplied by the hosting
// environment. It is read-only input; extforge never creates or mutates it.
type CallerIdentity struct {
	Handle     string `json:"handle"`     // the operator's handle
	Privileged bool   `json:"privileged"` // whether the operator may mutate the extensions root
}
