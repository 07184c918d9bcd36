package config

// ConfigBackend abstracts where non-secret config values are stored.
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	SetString(key, val string) error
}
