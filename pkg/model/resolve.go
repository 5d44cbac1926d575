package model

// ResolvedAction represents the type of action planned for a package.
type ResolvedAction string

const (
	// ResolvedActionInstall indicates the package will be downloaded and installed.
	ResolvedActionInstall ResolvedAction = "install"
	// ResolvedActionSkip indicates the package was already handled earlier in the chain.
	ResolvedActionSkip ResolvedAction = "skip"
)

// InstallStrategy is how downloaded bytes land in the target directory.
type InstallStrategy string

const (
	// StrategyExtract unpacks an archive into the target directory.
	StrategyExtract InstallStrategy = "extract"
	// StrategyWrite writes the download as a single file.
	StrategyWrite InstallStrategy = "write"
)

// ResolvedPackage is one step of an install chain, in the order the
// installer visits it.
type ResolvedPackage struct {
	Name         string          `json:"name" yaml:"name"`
	Version      string          `json:"version" yaml:"version"`
	FileName     string          `json:"file" yaml:"file"`
	Strategy     InstallStrategy `json:"strategy" yaml:"strategy"`
	Action       ResolvedAction  `json:"action" yaml:"action"`
	IsDependency bool            `json:"dependency" yaml:"dependency"`
	Depth        int             `json:"depth" yaml:"depth"`
	Reason       string          `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// ResolvedPackages is an install chain flattened depth-first.
type ResolvedPackages struct {
	Packages []ResolvedPackage `json:"packages" yaml:"packages"`
}

// Installs returns the names of steps that will actually be installed.
func (r ResolvedPackages) Installs() []string {
	var names []string
	for _, p := range r.Packages {
		if p.Action == ResolvedActionInstall {
			names = append(names, p.Name)
		}
	}
	return names
}
