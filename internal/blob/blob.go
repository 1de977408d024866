package blob

// Store is the raw-file object store contract. Keys are flat file names;
// implementations decide where the bytes live.
type Store interface {
	Put(key string, content []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	URL(key string) string
}
