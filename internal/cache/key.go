package cache

// Key identifies an image within a project. It is comparable and used
// directly as a map key, so a separator inside a name can never make two
// different images collide.
type Key struct {
	Project string
	Name    string
}

// NewKey returns the key for name inside project.
func NewKey(project, name string) Key {
	return Key{Project: project, Name: name}
}

// String renders the key for logs.
func (k Key) String() string {
	return k.Project + "/" + k.Name
}
