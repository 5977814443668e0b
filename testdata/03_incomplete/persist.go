package persist

type Persister interface {
	Save() error
	Load() error
}

// Store satisfies Persister.
type Store struct{}

func (Store) Save() error { return nil }
func (Store) Load() error { return nil }

// Draft only saves.
type Draft struct{}

func (Draft) Save() error { return nil }

// Legacy has Load with the wrong shape.
type Legacy struct{}

func (Legacy) Save() error { return nil }
func (Legacy) Load() bool  { return true }
