package version

import "fmt"

// Populated at link time via -ldflags.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Info is the build metadata served on /version.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func Get() Info {
	return Info{
		Version: Version,
		Commit:  coalesce(Commit, "unknown"),
		Date:    coalesce(Date, "unknown"),
	}
}

func String() string {
	i := Get()
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.Commit, i.Date)
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
