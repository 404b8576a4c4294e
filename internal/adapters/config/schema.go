package config

// GridFile represents the structure of the grid.yaml declaration file.
type GridFile struct {
	Version     string      `yaml:"version"`
	Matrix      []string    `yaml:"matrix"`
	Manifest    string      `yaml:"manifest"`
	Parallelism int         `yaml:"parallelism"`
	ArtifactDir string      `yaml:"artifactDir"`
	RuntimeDir  string      `yaml:"runtimeDir"`
	Commands    CommandsDTO `yaml:"commands"`
	Report      ReportDTO   `yaml:"report"`
}

// CommandsDTO holds the phase command lines as declared.
type CommandsDTO struct {
	Provision []string `yaml:"provision"`
	Install   []string `yaml:"install"`
	Lint      []string `yaml:"lint"`
	Test      []string `yaml:"test"`
}

// ReportDTO configures the external reporting collaborators. The bearer
// token is deliberately absent: it is sourced from the environment only.
type ReportDTO struct {
	CoverageURL string `yaml:"coverageUrl"`
	Endpoint    string `yaml:"endpoint"`
	AccessKey   string `yaml:"accessKey"`
	SecretKey   string `yaml:"secretKey"`
	Bucket      string `yaml:"bucket"`
	Region      string `yaml:"region"`
	UseSSL      bool   `yaml:"ssl"`
}
