package securestore

// Store provides persistent encrypted key-value storage for the host.
type Store interface {
	Set(key, value string) error
	Get(key string) (string, bool, error)
	Delete(key string) error
	List() ([]string, error)
}
