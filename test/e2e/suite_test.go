//go:build e2e

// Package e2e runs the provisioner against a live Elasticsearch cluster.
//
// Run these tests with:
//
//	ESPROV_E2E_URL=http://localhost:9200 ELASTIC_PASSWORD=changeme go test -v -tags=e2e ./test/e2e/...
//
// The suite creates indices and users prefixed with "esprov-e2e-" and deletes
// the indices afterwards.
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/imamik/esprov/internal/config"
	"github.com/imamik/esprov/internal/platform/elastic"
	"github.com/imamik/esprov/internal/provisioning"
)

// Test configuration
var (
	ctx         context.Context
	cancel      context.CancelFunc
	api         *elastic.RealClient
	provisioner *provisioning.Provisioner
	runID       string
)

// TestE2E is the entry point for Ginkgo tests.
func TestE2E(t *testing.T) {
	if os.Getenv("ESPROV_E2E_URL") == "" {
		t.Skip("ESPROV_E2E_URL not set, skipping e2e suite")
	}
	RegisterFailHandler(Fail)
	RunSpecs(t, "esprov E2E Suite")
}

var _ = BeforeSuite(func() {
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	runID = fmt.Sprintf("%d", time.Now().Unix())

	By("loading the connection settings")
	cfg, err := config.Load("")
	Expect(err).NotTo(HaveOccurred())
	cfg = cfg.WithURL(os.Getenv("ESPROV_E2E_URL"))
	conn, err := cfg.Connection()
	Expect(err).NotTo(HaveOccurred())

	By("connecting to the cluster")
	api, err = elastic.NewRealClient(conn, elastic.WithTimeouts(cfg.Timeouts.Elastic()))
	Expect(err).NotTo(HaveOccurred())

	observer := provisioning.NewConsoleObserver(provisioning.NewLogger(GinkgoWriter, 1))
	provisioner = provisioning.New(api, observer)

	h, err := provisioner.Health(ctx)
	Expect(err).NotTo(HaveOccurred())
	Expect(h.Status).To(Or(Equal(elastic.HealthGreen), Equal(elastic.HealthYellow)))
})

var _ = AfterSuite(func() {
	if cancel != nil {
		cancel()
	}
})

// testIndex returns a per-run index name and deletes it after the test.
func testIndex(suffix string) string {
	name := fmt.Sprintf("esprov-e2e-%s-%s", suffix, runID)
	DeferCleanup(func() {
		_ = api.DeleteIndex(context.Background(), name)
	})
	return name
}

// articles returns the articles index spec under name.
func articles(name string) provisioning.IndexSpec {
	return provisioning.IndexSpec{
		Name:     name,
		Shards:   1,
		Replicas: 0,
		Fields: []provisioning.Field{
			{Name: "title", Type: elastic.TypeText, Keyword: true},
			{Name: "priority", Type: elastic.TypeInteger},
		},
		Seed: []provisioning.Document{
			{ID: "1", Fields: map[string]any{"title": "Getting started with Elasticsearch", "priority": 1}},
			{ID: "2", Fields: map[string]any{"title": "Index mappings explained", "priority": 2}},
			{ID: "3", Fields: map[string]any{"title": "Search relevance tuning", "priority": 3}},
			{ID: "4", Fields: map[string]any{"title": "Backing up a cluster", "priority": 1}},
			{ID: "5", Fields: map[string]any{"title": "Elasticsearch aggregations", "priority": 2}},
		},
	}
}
