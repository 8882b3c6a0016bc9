package config

import "sync"

type Driver interface {
	Exists() (bool, error)
	Write(settings Settings) error
	Read() (Settings, error)
}

// NewStore creates the settings file with defaults when it does not exist.
func NewStore(driver Driver) (Store, error) {
	exists, err := driver.Exists()
	if err != nil {
		return Store{}, err
	}
	if !exists {
		if err := driver.Write(Defaults()); err != nil {
			return Store{}, err
		}
	}

	return Store{
		mu:     &sync.Mutex{},
		driver: driver,
	}, nil
}

type Store struct {
	mu     *sync.Mutex
	driver Driver
}

// GetSettings returns the stored settings on top of the defaults.
func (p Store) GetSettings() (Settings, error) {
	settings, err := p.driver.Read()
	if err != nil {
		return nil, err
	}
	return Defaults().Merge(settings), nil
}

func (p Store) UpdateSettings(fn func(settings Settings) (Settings, error)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	settings, err := p.GetSettings()
	if err != nil {
		return err
	}

	settings, err = fn(settings)
	if err != nil {
		return err
	}

	return p.driver.Write(settings)
}
