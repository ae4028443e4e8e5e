// Package interactions checks medication lists for known dangerous drug
// combinations, with a best-effort OpenFDA label lookup on top of the
// local table.
package interactions

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultOpenFDABaseURL is the public OpenFDA API endpoint.
const DefaultOpenFDABaseURL = "https://api.fda.gov"

// Interaction is one flagged drug pair.
type Interaction struct {
	DrugA       string `json:"drug_a"`
	DrugB       string `json:"drug_b"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

type knownPair struct {
	a, b, severity, description string
}

// knownInteractions is the local table of dangerous combinations. Matches
// are substring-based so "Warfarin 5mg" still matches "warfarin".
var knownInteractions = []knownPair{
	{"warfarin", "aspirin", "HIGH",
		"Increased bleeding risk. Consider stopping aspirin 7 days pre-op."},
	{"warfarin", "ibuprofen", "HIGH",
		"NSAIDs increase anticoagulation effect - major bleeding risk."},
	{"metformin", "contrast", "MEDIUM",
		"Hold metformin 48h before contrast imaging to prevent lactic acidosis."},
	{"clopidogrel", "aspirin", "MEDIUM",
		"Dual antiplatelet therapy - increased surgical bleeding. Discuss with surgeon."},
	{"lisinopril", "spironolactone", "MEDIUM",
		"Risk of hyperkalemia. Monitor potassium levels pre-op."},
	{"metoprolol", "verapamil", "HIGH",
		"Combined use can cause severe bradycardia or AV block."},
	{"ssri", "tramadol", "HIGH",
		"Serotonin syndrome risk - avoid combination or monitor closely."},
	{"digoxin", "amiodarone", "HIGH",
		"Amiodarone increases digoxin levels - risk of toxicity."},
	{"sildenafil", "nitrates", "HIGH",
		"Severe hypotension - absolutely contraindicated together."},
	{"lithium", "nsaid", "MEDIUM",
		"NSAIDs reduce lithium clearance - risk of toxicity."},
}

// Checker matches medication lists against the local interaction table
// and optionally consults OpenFDA drug labels.
type Checker struct {
	client *resty.Client
}

// NewChecker creates a checker. An empty baseURL disables the OpenFDA
// lookup entirely.
func NewChecker(baseURL string) *Checker {
	c := &Checker{}
	if baseURL != "" {
		c.client = resty.New().
			SetBaseURL(baseURL).
			SetTimeout(5 * time.Second).
			SetHeader("Accept", "application/json")
	}
	return c
}

// Check returns every known interaction present in the medication list.
// The OpenFDA lookup is advisory only: failures are logged, never
// returned.
func (c *Checker) Check(ctx context.Context, medications []string) []Interaction {
	meds := make([]string, 0, len(medications))
	for _, m := range medications {
		meds = append(meds, strings.ToLower(strings.TrimSpace(m)))
	}

	var found []Interaction
	for _, pair := range knownInteractions {
		if containsDrug(meds, pair.a) && containsDrug(meds, pair.b) {
			found = append(found, Interaction{
				DrugA:       title(pair.a),
				DrugB:       title(pair.b),
				Severity:    pair.severity,
				Description: pair.description,
				Source:      "Aetheris Drug DB (OpenFDA-derived)",
			})
		}
	}

	if c.client != nil && len(medications) > 0 {
		c.lookupLabel(ctx, medications[0])
	}

	return found
}

// lookupLabel surfaces OpenFDA label warnings for the primary medication.
// Purely observational for now.
func (c *Checker) lookupLabel(ctx context.Context, medication string) {
	drug := strings.Fields(medication)
	if len(drug) == 0 {
		return
	}

	var result struct {
		Results []struct {
			Warnings []string `json:"warnings"`
		} `json:"results"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("search", fmt.Sprintf("warnings:%s", drug[0])).
		SetQueryParam("limit", "1").
		SetResult(&result).
		Get("/drug/label.json")
	if err != nil {
		log.Printf("openfda lookup unavailable: %v", err)
		return
	}
	if resp.IsSuccess() && len(result.Results) > 0 && len(result.Results[0].Warnings) > 0 {
		log.Printf("openfda warning found for %s", drug[0])
	}
}

func containsDrug(meds []string, drug string) bool {
	for _, m := range meds {
		if strings.Contains(m, drug) {
			return true
		}
	}
	return false
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
