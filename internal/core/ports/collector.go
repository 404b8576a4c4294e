package ports

// ArtifactCollector copies phase artifacts into the well-known artifact
// directory, keyed by environment identifier to avoid collisions between
// parallel environments.
//
//go:generate go run go.uber.org/mock/mockgen -source=collector.go -destination=mocks/mock_collector.go -package=mocks
type ArtifactCollector interface {
	// Collect copies every regular file under srcDir into destDir/envID and
	// returns the destination paths in collection order.
	Collect(envID, srcDir, destDir string) ([]string, error)
}
