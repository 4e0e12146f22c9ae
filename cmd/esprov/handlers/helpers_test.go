package handlers

import (
	"bytes"
	"context"
	"testing"

	"github.com/imamik/esprov/internal/config"
	"github.com/imamik/esprov/internal/config/wizard"
	"github.com/imamik/esprov/internal/platform/elastic"
	estesting "github.com/imamik/esprov/internal/testing"
)

// testEnv captures what a handler did in one test.
type testEnv struct {
	fake   *estesting.FakeCluster
	out    *bytes.Buffer
	errOut *bytes.Buffer
	conn   elastic.Connection
	env    map[string]string
}

// saveAndRestoreFactories replaces the factory variables with test doubles
// backed by a FakeCluster and restores them when the test ends.
func saveAndRestoreFactories(t *testing.T) *testEnv {
	t.Helper()

	origLoadConfig := loadConfig
	origNewClusterClient := newClusterClient
	origLookupEnv := lookupEnv
	origIsInteractive := isInteractive
	origRunUserWizard := runUserWizard
	origRunIndexWizard := runIndexWizard
	origRunSearchWizard := runSearchWizard
	origWriteManifest := writeManifest
	origLoadManifest := loadManifest
	origStdout := stdout
	origStderr := stderr

	t.Cleanup(func() {
		loadConfig = origLoadConfig
		newClusterClient = origNewClusterClient
		lookupEnv = origLookupEnv
		isInteractive = origIsInteractive
		runUserWizard = origRunUserWizard
		runIndexWizard = origRunIndexWizard
		runSearchWizard = origRunSearchWizard
		writeManifest = origWriteManifest
		loadManifest = origLoadManifest
		stdout = origStdout
		stderr = origStderr
	})

	env := &testEnv{
		fake:   estesting.NewFakeCluster(),
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
		env:    map[string]string{},
	}

	loadConfig = func(string) (*config.Config, error) {
		return &config.Config{
			URLs:     []string{"http://localhost:9200"},
			Username: "elastic",
			Password: "changeme",
		}, nil
	}
	newClusterClient = func(conn elastic.Connection, _ ...elastic.ClientOption) (elastic.API, error) {
		env.conn = conn
		return env.fake, nil
	}
	lookupEnv = func(key string) string { return env.env[key] }
	isInteractive = func() bool { return false }
	runUserWizard = func(context.Context) (*wizard.UserAnswers, error) {
		t.Fatal("unexpected user wizard")
		return nil, nil
	}
	runIndexWizard = func(context.Context, wizard.IndexAnswers) (*wizard.IndexAnswers, error) {
		t.Fatal("unexpected index wizard")
		return nil, nil
	}
	runSearchWizard = func(context.Context, string) (*wizard.SearchAnswers, error) {
		t.Fatal("unexpected search wizard")
		return nil, nil
	}
	stdout = env.out
	stderr = env.errOut

	return env
}
