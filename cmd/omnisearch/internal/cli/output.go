package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lookatitude/omnisearch/credit"
	"github.com/lookatitude/omnisearch/schema"
	"github.com/lookatitude/omnisearch/search"
)

// maxPlainItems is how many result items the plain-text renderer prints in
// full before collapsing the remainder into a "… N more" tail.
const maxPlainItems = 5

// lowCreditThresholdPercent is the remaining-quota fraction, expressed as a
// percentage, below which the plain-text renderer surfaces a warning.
const lowCreditThresholdPercent = 10

// jsonItem, jsonAttempt, and jsonCredit mirror the programmatic output
// schema field-for-field; their json tags are the wire contract.
type jsonItem struct {
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Snippet      string   `json:"snippet"`
	Score        *float64 `json:"score,omitempty"`
	SourceEngine string   `json:"sourceEngine"`
}

type jsonAttempt struct {
	EngineId string `json:"engineId"`
	Success  bool   `json:"success"`
	Reason   string `json:"reason,omitempty"`
}

type jsonCredit struct {
	EngineId    string `json:"engineId"`
	Quota       int    `json:"quota"`
	Used        int    `json:"used"`
	Remaining   int    `json:"remaining"`
	IsExhausted bool   `json:"isExhausted"`
}

type jsonResult struct {
	Query        string        `json:"query"`
	Items        []jsonItem    `json:"items"`
	EnginesTried []jsonAttempt `json:"enginesTried"`
	Credits      []jsonCredit  `json:"credits,omitempty"`
}

// RenderJSON writes result as the programmatic JSON output schema.
func RenderJSON(ctx context.Context, result search.RunResult) ([]byte, error) {
	out := jsonResult{
		Query:        result.Query.Query,
		Items:        make([]jsonItem, 0, len(result.Items)),
		EnginesTried: make([]jsonAttempt, 0, len(result.Attempts)),
	}

	for _, item := range result.Items {
		out.Items = append(out.Items, jsonItem{
			Title:        item.Title,
			URL:          item.URL,
			Snippet:      item.Snippet,
			Score:        item.Score,
			SourceEngine: string(item.SourceEngine),
		})
	}

	for _, a := range result.Attempts {
		entry := jsonAttempt{EngineId: string(a.EngineId), Success: a.Success}
		if !a.Success {
			entry.Reason = string(a.Reason)
		}
		out.EnginesTried = append(out.EnginesTried, entry)
	}

	for _, s := range result.Credits {
		out.Credits = append(out.Credits, jsonCredit{
			EngineId:    string(s.EngineId),
			Quota:       s.Quota,
			Used:        s.Used,
			Remaining:   s.Remaining,
			IsExhausted: s.IsExhausted,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("cli: encode result: %w", err)
	}
	return data, nil
}

// RenderPlain writes result as the grouped-by-engine human-readable report:
// up to maxPlainItems results in full per engine, a "… N more" tail beyond
// that, an engine-attempt summary line, and low-credit warnings.
func RenderPlain(ctx context.Context, result search.RunResult) []byte {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Results for %q\n", result.Query.Query)

	byEngine := make(map[schema.EngineId][]schema.SearchResultItem)
	var engineOrder []schema.EngineId
	for _, item := range result.Items {
		if _, seen := byEngine[item.SourceEngine]; !seen {
			engineOrder = append(engineOrder, item.SourceEngine)
		}
		byEngine[item.SourceEngine] = append(byEngine[item.SourceEngine], item)
	}

	if len(result.Items) == 0 {
		buf.WriteString("  (no results)\n")
	}
	for _, engineId := range engineOrder {
		items := byEngine[engineId]
		fmt.Fprintf(&buf, "\n%s (%d):\n", engineId, len(items))
		shown := items
		if len(shown) > maxPlainItems {
			shown = shown[:maxPlainItems]
		}
		for i, item := range shown {
			fmt.Fprintf(&buf, "  %d. %s\n     %s\n", i+1, item.Title, item.URL)
		}
		if remaining := len(items) - len(shown); remaining > 0 {
			fmt.Fprintf(&buf, "  … %d more\n", remaining)
		}
	}

	buf.WriteString("\nEngines tried:\n")
	for _, a := range result.Attempts {
		if a.Success {
			fmt.Fprintf(&buf, "  %s: ok\n", a.EngineId)
		} else {
			fmt.Fprintf(&buf, "  %s: failed (%s)\n", a.EngineId, a.Reason)
		}
	}

	warnings := lowCreditWarnings(result.Credits)
	if len(warnings) > 0 {
		buf.WriteString("\nWarnings:\n")
		for _, w := range warnings {
			fmt.Fprintf(&buf, "  %s\n", w)
		}
	}

	return []byte(buf.String())
}

// lowCreditWarnings returns a warning line for every snapshot that is
// exhausted or has fallen below lowCreditThresholdPercent of its quota.
func lowCreditWarnings(snapshots []credit.Snapshot) []string {
	var warnings []string
	for _, s := range snapshots {
		if s.Quota == 0 {
			continue
		}
		if s.IsExhausted {
			warnings = append(warnings, fmt.Sprintf("%s: credits exhausted (%d/%d used)", s.EngineId, s.Used, s.Quota))
			continue
		}
		if s.Remaining*100 < s.Quota*lowCreditThresholdPercent {
			warnings = append(warnings, fmt.Sprintf("%s: low credit, %d/%d remaining", s.EngineId, s.Remaining, s.Quota))
		}
	}
	return warnings
}

// RenderCreditsPlain writes a standalone per-engine credit snapshot report,
// for the "credits" subcommand.
func RenderCreditsPlain(snapshots []credit.Snapshot) []byte {
	var buf strings.Builder
	buf.WriteString("Credit usage:\n")
	for _, s := range snapshots {
		status := "ok"
		if s.IsExhausted {
			status = "exhausted"
		}
		fmt.Fprintf(&buf, "  %-10s used %d/%d (remaining %d) [%s]\n", s.EngineId, s.Used, s.Quota, s.Remaining, status)
	}
	return []byte(buf.String())
}

// RenderCreditsJSON writes the "credits" subcommand's JSON form.
func RenderCreditsJSON(snapshots []credit.Snapshot) ([]byte, error) {
	out := make([]jsonCredit, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, jsonCredit{
			EngineId:    string(s.EngineId),
			Quota:       s.Quota,
			Used:        s.Used,
			Remaining:   s.Remaining,
			IsExhausted: s.IsExhausted,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("cli: encode credits: %w", err)
	}
	return data, nil
}

// HealthEntry is one provider's outcome from the "health" subcommand.
type HealthEntry struct {
	EngineId string
	Healthy  bool
	Message  string
}

// RenderHealthPlain writes the "health" subcommand's plain-text report.
func RenderHealthPlain(entries []HealthEntry) []byte {
	var buf strings.Builder
	buf.WriteString("Provider health:\n")
	for _, e := range entries {
		status := "healthy"
		if !e.Healthy {
			status = "unhealthy"
		}
		if e.Message != "" {
			fmt.Fprintf(&buf, "  %-10s %s (%s)\n", e.EngineId, status, e.Message)
		} else {
			fmt.Fprintf(&buf, "  %-10s %s\n", e.EngineId, status)
		}
	}
	return []byte(buf.String())
}

// RenderHealthJSON writes the "health" subcommand's JSON form.
func RenderHealthJSON(entries []HealthEntry) ([]byte, error) {
	type jsonHealth struct {
		EngineId string `json:"engineId"`
		Healthy  bool   `json:"healthy"`
		Message  string `json:"message,omitempty"`
	}
	out := make([]jsonHealth, 0, len(entries))
	for _, e := range entries {
		out = append(out, jsonHealth{EngineId: e.EngineId, Healthy: e.Healthy, Message: e.Message})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("cli: encode health: %w", err)
	}
	return data, nil
}
