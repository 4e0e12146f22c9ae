package config

import (
	_ "embed"
	"fmt"
)

//go:embed samples/articles.yaml
var sampleManifest []byte

// SampleDemoPasswordEnv names the variable holding the password of the
// sample manifest's demo user.
const SampleDemoPasswordEnv = "ESPROV_DEMO_PASSWORD"

// SampleManifest returns the built-in articles dataset: a demo user, the
// articles index with five documents and a verification run. The demo user
// is left out when lookup finds no password for it; its name is returned
// in skipped.
func SampleManifest(lookup func(string) string) (m *Manifest, skipped []string) {
	m, err := ParseManifest(sampleManifest)
	if err != nil {
		panic(fmt.Sprintf("built-in sample manifest: %v", err))
	}
	if lookup(SampleDemoPasswordEnv) == "" {
		for _, u := range m.Users {
			skipped = append(skipped, u.Name)
		}
		m.Users = nil
	}
	return m, skipped
}

// SampleManifestYAML returns the raw sample manifest, e.g. as a starting
// point for a custom one.
func SampleManifestYAML() []byte {
	return append([]byte(nil), sampleManifest...)
}
