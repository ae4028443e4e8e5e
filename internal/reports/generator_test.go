package reports

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aetheris-health/aetheris/internal/models"
	"github.com/aetheris-health/aetheris/internal/storage"
)

type stubSummarizer struct {
	content string
	err     error
	prompts []string
}

func (s *stubSummarizer) Summarize(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.content, s.err
}

func seededStore(t *testing.T) storage.Storage {
	t.Helper()
	store := storage.NewMemoryStorage()
	if err := store.SeedDemoPatients(); err != nil {
		t.Fatalf("SeedDemoPatients() error = %v", err)
	}
	return store
}

func TestGenerateOperativeNoteFromTemplate(t *testing.T) {
	store := seededStore(t)
	g := NewGenerator(store, nil)

	report, err := g.Generate(context.Background(), GenerateRequest{
		PatientID:  "p001",
		SurgeryID:  "s001",
		ReportType: models.ReportOperativeNote,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if report.ID == "" {
		t.Error("report should be stored with an id")
	}
	if report.Title != "Operative Note" {
		t.Errorf("Title = %q, want Operative Note", report.Title)
	}
	if report.Status != "draft" {
		t.Errorf("Status = %q, want draft", report.Status)
	}
	for _, want := range []string{"OPERATIVE NOTE", "Patient ID: p001", "PREOPERATIVE DIAGNOSIS", "DISPOSITION"} {
		if !strings.Contains(report.Content, want) {
			t.Errorf("content missing %q", want)
		}
	}

	// Stored copy matches the returned one.
	stored, err := store.Reports().GetByID(context.Background(), report.ID)
	if err != nil || stored == nil {
		t.Fatalf("stored report lookup failed: %v", err)
	}
	if stored.Content != report.Content {
		t.Error("stored content differs from returned content")
	}
}

func TestGenerateDischargeSummaryFromTemplate(t *testing.T) {
	g := NewGenerator(seededStore(t), nil)

	report, err := g.Generate(context.Background(), GenerateRequest{
		PatientID:  "p002",
		ReportType: models.ReportDischargeSummary,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, want := range []string{"DISCHARGE SUMMARY", "HOSPITAL COURSE", "FOLLOW-UP APPOINTMENT"} {
		if !strings.Contains(report.Content, want) {
			t.Errorf("content missing %q", want)
		}
	}
}

func TestGeneratePrefersSummarizer(t *testing.T) {
	sum := &stubSummarizer{content: "Procedure completed without complication."}
	g := NewGenerator(seededStore(t), sum)

	report, err := g.Generate(context.Background(), GenerateRequest{
		PatientID:  "p001",
		ReportType: models.ReportOperativeNote,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if report.Content != "Procedure completed without complication." {
		t.Errorf("content = %q, want summarizer output", report.Content)
	}
	if len(sum.prompts) != 1 || !strings.Contains(sum.prompts[0], "Rajesh Kumar") {
		t.Errorf("prompt should carry the patient profile: %v", sum.prompts)
	}
}

func TestGenerateFallsBackWhenSummarizerFails(t *testing.T) {
	sum := &stubSummarizer{err: errors.New("service unavailable")}
	g := NewGenerator(seededStore(t), sum)

	report, err := g.Generate(context.Background(), GenerateRequest{
		PatientID:  "p001",
		ReportType: models.ReportOperativeNote,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(report.Content, "OPERATIVE NOTE") {
		t.Error("failed summarizer should fall back to the template")
	}
}

func TestGenerateRejectsUnknownType(t *testing.T) {
	g := NewGenerator(seededStore(t), nil)
	if _, err := g.Generate(context.Background(), GenerateRequest{
		PatientID:  "p001",
		ReportType: models.ReportType("karaoke_setlist"),
	}); err == nil {
		t.Fatal("expected an error for an unknown report type")
	}
}

func TestGenerateGenericTypes(t *testing.T) {
	g := NewGenerator(seededStore(t), nil)
	for _, rt := range []models.ReportType{models.ReportRiskAssessment, models.ReportComplicationReport} {
		report, err := g.Generate(context.Background(), GenerateRequest{PatientID: "p003", ReportType: rt})
		if err != nil {
			t.Fatalf("Generate(%s) error = %v", rt, err)
		}
		if report.Content == "" || report.Title == "" {
			t.Errorf("Generate(%s) produced empty document", rt)
		}
	}
}
