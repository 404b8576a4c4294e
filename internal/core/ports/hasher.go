package ports

// ManifestHasher defines the interface for computing content checksums.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type ManifestHasher interface {
	// ChecksumFile computes a deterministic checksum of the file content.
	ChecksumFile(path string) (string, error)
}
