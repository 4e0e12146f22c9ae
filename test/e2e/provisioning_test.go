//go:build e2e

package e2e

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/imamik/esprov/internal/provisioning"
)

var _ = Describe("Users", func() {
	It("creates a user once and then reports it as existing", func() {
		spec := provisioning.UserSpec{
			Name:     "esprov-e2e-user-" + runID,
			Password: "e2e-s3cret-pw",
			Roles:    []string{"viewer"},
		}

		first := provisioner.EnsureUser(ctx, spec)
		Expect(first.Outcome).To(Equal(provisioning.OutcomeCreated), first.String())

		second := provisioner.EnsureUser(ctx, spec)
		Expect(second.Outcome).To(Equal(provisioning.OutcomeAlreadyExists), second.String())
		Expect(second.Disposition).To(Equal(provisioning.Skipped))
	})
})

var _ = Describe("Indices", func() {
	It("recreates an index with only the new mapping", func() {
		name := testIndex("recreate")

		Expect(provisioner.EnsureIndex(ctx, articles(name), provisioning.Skip).Outcome).
			To(Equal(provisioning.OutcomeCreated))

		replacement := provisioning.IndexSpec{
			Name:     name,
			Shards:   1,
			Replicas: 0,
			Fields:   []provisioning.Field{{Name: "headline", Type: "text"}},
		}
		r := provisioner.EnsureIndex(ctx, replacement, provisioning.Recreate)
		Expect(r.Label()).To(Equal("already_exists(recreated)"))

		props, err := api.GetMapping(ctx, name)
		Expect(err).NotTo(HaveOccurred())
		Expect(props.Names()).To(ConsistOf("headline"))
	})
})

var _ = Describe("Seeding and verification", func() {
	var name string

	BeforeEach(func() {
		name = testIndex("articles")
		Expect(provisioner.EnsureIndex(ctx, articles(name), provisioning.Skip).OK()).To(BeTrue())
	})

	It("writes good documents next to a malformed one", func() {
		docs := articles(name).Seed
		docs[2].Fields = map[string]any{"title": "Broken", "priority": "high"}

		results := provisioner.SeedDocuments(ctx, name, docs)
		counts := provisioning.CountOutcomes(results)
		Expect(counts[provisioning.OutcomeCreated]).To(Equal(4))
		Expect(counts[provisioning.OutcomeFailed]).To(Equal(1))

		src, err := provisioner.GetDocument(ctx, name, "1")
		Expect(err).NotTo(HaveOccurred())
		Expect(src).To(HaveKeyWithValue("title", "Getting started with Elasticsearch"))
		Expect(src).To(HaveKeyWithValue("priority", BeNumerically("==", 1)))
	})

	It("answers the verification queries", func() {
		results := provisioner.SeedDocuments(ctx, name, articles(name).Seed)
		_, failed := provisioning.FirstFailure(results)
		Expect(failed).To(BeFalse())
		Expect(provisioner.Refresh(ctx, name)).To(Succeed())

		outcomes := provisioner.RunVerificationSuite(ctx, name, "elasticsearch")
		Expect(outcomes).To(HaveLen(5))
		for _, o := range outcomes {
			Expect(o.Err).NotTo(HaveOccurred(), o.Name)
		}
		Expect(outcomes[0].HitCount).To(BeEquivalentTo(2))
		Expect(outcomes[3].Name).To(Equal(provisioning.QueryNumericRange))
		Expect(outcomes[3].HitCount).To(BeEquivalentTo(3))
	})

	It("converges when the workflow runs twice", func() {
		plan := &provisioning.Plan{Indices: []provisioning.IndexSpec{articles(name)}}

		for range 2 {
			report := provisioner.Apply(ctx, plan)
			Expect(report.Failed()).To(BeFalse())
		}

		count, err := provisioner.Count(ctx, name)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(BeEquivalentTo(5))
	})
})
