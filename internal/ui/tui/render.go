package tui

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/imamik/esprov/internal/platform/elastic"
	"github.com/imamik/esprov/internal/provisioning"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

// sf wraps a lipgloss.Style into a styleFunc.
func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

// IsInteractiveTTY reports whether stdout is a terminal.
func IsInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// RenderReport renders a full apply report.
func RenderReport(r *provisioning.Report) string {
	var b strings.Builder

	renderHeader(&b, r)
	if r.Health != nil {
		renderHealth(&b, r.Health)
	}
	if len(r.Users) > 0 {
		renderResults(&b, "Users", r.Users)
	}
	if len(r.Indices) > 0 {
		renderResults(&b, "Indices", r.Indices)
	}
	for _, s := range r.Seeds {
		renderSeed(&b, s)
	}
	for _, v := range r.Verification {
		renderVerification(&b, v)
	}
	if r.Err != nil {
		b.WriteString(sectionStyle.Render("  Stopped"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "    %s %s\n", failedStyle.Render(crossMark), r.Err)
	}
	renderFooter(&b, r)

	return b.String()
}

// RenderResults renders one section of reconcile results.
func RenderResults(title string, results []provisioning.ReconcileResult) string {
	var b strings.Builder
	renderResults(&b, title, results)
	return b.String()
}

// RenderSeed renders the document results of one index.
func RenderSeed(s provisioning.SeedReport) string {
	var b strings.Builder
	renderSeed(&b, s)
	return b.String()
}

// RenderVerification renders the outcomes of one verification suite run.
func RenderVerification(v provisioning.VerificationReport) string {
	var b strings.Builder
	renderVerification(&b, v)
	return b.String()
}

// RenderHealth renders the cluster health line.
func RenderHealth(h *elastic.Health) string {
	var b strings.Builder
	renderHealth(&b, h)
	return b.String()
}

func renderHeader(b *strings.Builder, r *provisioning.Report) {
	b.WriteString(titleStyle.Render("esprov apply"))
	b.WriteString(" ")
	if r.Failed() {
		b.WriteString(failedStyle.Render("Failed"))
	} else {
		b.WriteString(readyStyle.Render("Done"))
	}
	b.WriteString("\n")
}

func renderHealth(b *strings.Builder, h *elastic.Health) {
	b.WriteString(sectionStyle.Render("  Cluster"))
	b.WriteString("\n")
	icon, style := healthIcon(h.Status)
	fmt.Fprintf(b, "    %s %-18s %s\n", style(icon), h.ClusterName,
		dimStyle.Render(fmt.Sprintf("%s, %d nodes, %d unassigned shards", h.Status, h.NumberOfNodes, h.UnassignedShards)))
}

func renderResults(b *strings.Builder, title string, results []provisioning.ReconcileResult) {
	b.WriteString(sectionStyle.Render("  " + title))
	b.WriteString("\n")
	for _, r := range results {
		icon, style := resultIcon(r)
		detail := ""
		if r.Outcome == provisioning.OutcomeFailed {
			detail = fmt.Sprintf("%s (%s)", r.Reason, r.State)
			if r.Err != nil {
				detail += ": " + r.Err.Error()
			}
		}
		fmt.Fprintf(b, "    %s %-18s %-26s %s\n", style(icon), r.Name, style(r.Label()), dimStyle.Render(detail))
	}
}

func renderSeed(b *strings.Builder, s provisioning.SeedReport) {
	b.WriteString(sectionStyle.Render("  Documents: " + s.Index))
	b.WriteString("\n")

	counts := provisioning.CountOutcomes(s.Results)
	summary := fmt.Sprintf("%d created, %d already existed, %d failed",
		counts[provisioning.OutcomeCreated], counts[provisioning.OutcomeAlreadyExists], counts[provisioning.OutcomeFailed])
	icon, style := checkMark, sf(readyStyle)
	if counts[provisioning.OutcomeFailed] > 0 {
		icon, style = crossMark, sf(failedStyle)
	}
	fmt.Fprintf(b, "    %s %s\n", style(icon), summary)

	for _, r := range s.Results {
		if r.Outcome != provisioning.OutcomeFailed {
			continue
		}
		fmt.Fprintf(b, "      %s %-16s %s\n", failedStyle.Render(crossMark), r.Name, dimStyle.Render(fmt.Sprintf("%s: %v", r.Reason, r.Err)))
	}
	if s.RefreshErr != nil {
		fmt.Fprintf(b, "    %s refresh failed, documents become searchable later: %v\n", warningStyle.Render(warnMark), s.RefreshErr)
	}
}

func renderVerification(b *strings.Builder, v provisioning.VerificationReport) {
	b.WriteString(sectionStyle.Render(fmt.Sprintf("  Verification: %s %q", v.Index, v.Query)))
	b.WriteString("\n")

	for _, o := range v.Outcomes {
		switch {
		case o.Skipped:
			fmt.Fprintf(b, "    %s %-18s %s\n", dimStyle.Render(skipMark), o.Name, dimStyle.Render("skipped: "+o.Reason))
		case o.Err != nil:
			fmt.Fprintf(b, "    %s %-18s %s\n", failedStyle.Render(crossMark), o.Name, failedStyle.Render(o.Err.Error()))
		default:
			fmt.Fprintf(b, "    %s %-18s %s\n", readyStyle.Render(checkMark), o.Name,
				dimStyle.Render(fmt.Sprintf("%d hits, took %s", o.HitCount, formatDuration(o.Took))))
			for _, h := range o.Top {
				fmt.Fprintf(b, "        %-8s %6.2f  %s\n", h.ID, h.Score, summarizeSource(h.Source))
			}
			for _, bk := range o.Buckets {
				fmt.Fprintf(b, "        %-24s %d\n", bk.Key, bk.DocCount)
			}
		}
	}
}

func renderFooter(b *strings.Builder, r *provisioning.Report) {
	parts := []string{fmt.Sprintf("elapsed: %s", formatDuration(r.Duration))}
	if n := len(r.ResourceFailures()) + len(r.SeedFailures()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	if n := len(r.VerificationFailures()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d verification queries failed", n))
	}
	b.WriteString(footerStyle.Render("  " + strings.Join(parts, "  |  ")))
	b.WriteString("\n")
}

// Helper functions

func resultIcon(r provisioning.ReconcileResult) (string, styleFunc) {
	switch {
	case r.Outcome == provisioning.OutcomeFailed:
		return crossMark, sf(failedStyle)
	case r.Disposition == provisioning.Recreated, r.Disposition == provisioning.Updated:
		return checkMark, sf(warningStyle)
	default:
		return checkMark, sf(readyStyle)
	}
}

func healthIcon(status string) (string, styleFunc) {
	switch status {
	case elastic.HealthGreen:
		return checkMark, sf(readyStyle)
	case elastic.HealthYellow:
		return warnMark, sf(warningStyle)
	default:
		return crossMark, sf(failedStyle)
	}
}

// summarizeSource renders a document source on one line, keys sorted,
// truncated to 60 characters.
func summarizeSource(src map[string]any) string {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, src[k])
	}
	s := strings.Join(parts, " ")
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return s
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
