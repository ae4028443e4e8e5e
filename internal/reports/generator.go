// Package reports generates clinical documents: operative notes, discharge
// summaries, and risk reports. Prose generation is delegated to a
// Summarizer when one is configured; a deterministic template fallback
// always produces a usable document.
package reports

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"text/template"
	"time"

	"github.com/aetheris-health/aetheris/internal/metrics"
	"github.com/aetheris-health/aetheris/internal/models"
	"github.com/aetheris-health/aetheris/internal/storage"
)

// Summarizer turns a structured prompt into clinical prose. External
// collaborator; implementations may call out to an LLM service.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// GenerateRequest describes the document to produce.
type GenerateRequest struct {
	PatientID  string
	SurgeryID  string
	ReportType models.ReportType
	ExtraNotes string
}

// SurgeryContext is the operative detail woven into the document. Values
// default to placeholders when the surgery record is unavailable.
type SurgeryContext struct {
	SurgeryType      string
	Surgeon          string
	Anesthesiologist string
	ORRoom           string
	DurationMinutes  int
	BloodLossML      int
}

func defaultSurgeryContext() SurgeryContext {
	return SurgeryContext{
		SurgeryType:      "Surgical Procedure",
		Surgeon:          "Attending Surgeon",
		Anesthesiologist: "Anesthesiologist",
		ORRoom:           "OR-1",
		DurationMinutes:  180,
		BloodLossML:      300,
	}
}

// TypeInfo describes one supported report type.
type TypeInfo struct {
	Type  models.ReportType `json:"type"`
	Title string            `json:"title"`
}

// Types lists the supported report types in a stable order.
func Types() []TypeInfo {
	ordered := []models.ReportType{
		models.ReportOperativeNote,
		models.ReportDischargeSummary,
		models.ReportRiskAssessment,
		models.ReportComplicationReport,
	}
	infos := make([]TypeInfo, 0, len(ordered))
	for _, t := range ordered {
		infos = append(infos, TypeInfo{Type: t, Title: reportTitles[t]})
	}
	return infos
}

var reportTitles = map[models.ReportType]string{
	models.ReportOperativeNote:      "Operative Note",
	models.ReportDischargeSummary:   "Discharge Summary",
	models.ReportRiskAssessment:     "Pre-Op Risk Assessment Report",
	models.ReportComplicationReport: "Complication Risk Report",
}

// Generator produces and stores clinical reports.
type Generator struct {
	reports    storage.ReportRepository
	patients   storage.PatientRepository
	summarizer Summarizer
}

// NewGenerator creates a report generator. summarizer may be nil, in
// which case every document comes from the templates.
func NewGenerator(store storage.Storage, summarizer Summarizer) *Generator {
	return &Generator{
		reports:    store.Reports(),
		patients:   store.Patients(),
		summarizer: summarizer,
	}
}

// Generate builds the document, stores it with status draft, and returns
// the stored record.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*models.Report, error) {
	title, ok := reportTitles[req.ReportType]
	if !ok {
		return nil, fmt.Errorf("unknown report type: %s", req.ReportType)
	}

	patient, err := g.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}

	surgery := defaultSurgeryContext()
	content := g.compose(ctx, req, patient, surgery)

	report := &models.Report{
		PatientID:  req.PatientID,
		SurgeryID:  req.SurgeryID,
		ReportType: req.ReportType,
		Title:      title,
		Content:    content,
		Status:     "draft",
	}
	if err := g.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}
	metrics.ReportsGeneratedTotal.WithLabelValues(string(req.ReportType)).Inc()
	return report, nil
}

// compose asks the summarizer first and falls back to the template on any
// failure.
func (g *Generator) compose(ctx context.Context, req GenerateRequest, patient *models.Patient, surgery SurgeryContext) string {
	if g.summarizer != nil {
		prompt := buildPrompt(req, patient, surgery)
		content, err := g.summarizer.Summarize(ctx, prompt)
		if err == nil && content != "" {
			return content
		}
		if err != nil {
			log.Printf("summarizer unavailable for %s, using template: %v", req.ReportType, err)
		}
	}
	return renderTemplate(req, surgery)
}

func buildPrompt(req GenerateRequest, patient *models.Patient, surgery SurgeryContext) string {
	name, age := "N/A", "N/A"
	if patient != nil {
		name = patient.Name
		age = fmt.Sprintf("%d", patient.Age)
	}
	notes := req.ExtraNotes
	if notes == "" {
		notes = "None"
	}

	switch req.ReportType {
	case models.ReportOperativeNote:
		return fmt.Sprintf(
			"Generate a professional operative note for the following surgery. "+
				"Use standard clinical format. Be concise but complete.\n\n"+
				"Patient: %s, Age: %s\nSurgery: %s\nSurgeon: %s\n"+
				"Duration: %d minutes\nBlood loss: %d mL\nAdditional notes: %s\n\n"+
				"Write a complete operative note with sections: Preoperative Diagnosis, "+
				"Postoperative Diagnosis, Procedure Performed, Operative Details, Disposition.",
			name, age, surgery.SurgeryType, surgery.Surgeon,
			surgery.DurationMinutes, surgery.BloodLossML, notes)
	case models.ReportDischargeSummary:
		return fmt.Sprintf(
			"Generate a professional discharge summary.\n\n"+
				"Patient: %s, Age: %s\nProcedure: %s\nAdditional notes: %s\n\n"+
				"Write a complete discharge summary with sections: Hospital Course, "+
				"Discharge Condition, Discharge Medications, Instructions, Follow-up.",
			name, age, surgery.SurgeryType, notes)
	default:
		return fmt.Sprintf("Generate a %s report for patient %s.", req.ReportType, req.PatientID)
	}
}

var operativeNoteTemplate = template.Must(template.New("operative_note").Parse(`OPERATIVE NOTE
==============
Date: {{.Date}}
Patient ID: {{.PatientID}}
Procedure: {{.Surgery.SurgeryType}}
Surgeon: {{.Surgery.Surgeon}}
Anesthesiologist: {{.Surgery.Anesthesiologist}}
OR Room: {{.Surgery.ORRoom}}

PREOPERATIVE DIAGNOSIS:
Patient scheduled for {{.Surgery.SurgeryType}}

POSTOPERATIVE DIAGNOSIS:
Same as preoperative.

PROCEDURE PERFORMED:
{{.Surgery.SurgeryType}} under general anesthesia.

OPERATIVE DETAILS:
The patient was brought to the operating room and positioned appropriately.
Standard monitoring was applied including continuous ECG, pulse oximetry,
end-tidal CO2, and invasive blood pressure monitoring.

Anesthesia was induced without complication. The operative site was
prepped and draped in a sterile fashion.

Procedure performed as planned. Total operative time: {{.Surgery.DurationMinutes}} minutes.
Estimated blood loss: {{.Surgery.BloodLossML}} mL. No intraoperative complications noted.

Wound was closed in layers with appropriate suture material.
Final sponge, needle, and instrument counts were correct.

DISPOSITION:
Patient transferred to Post-Anesthesia Care Unit (PACU) in stable condition.

ATTENDING SURGEON SIGNATURE: ___________________________
Date/Time: {{.Date}}`))

var dischargeSummaryTemplate = template.Must(template.New("discharge_summary").Parse(`DISCHARGE SUMMARY
=================
Date of Discharge: {{.Date}}
Patient ID: {{.PatientID}}
Procedure: {{.Surgery.SurgeryType}}
Admitting Surgeon: {{.Surgery.Surgeon}}

HOSPITAL COURSE:
Patient underwent {{.Surgery.SurgeryType}} without significant intraoperative complications.
Post-operative recovery was uneventful. Pain was managed with multimodal analgesia protocol.

DISCHARGE CONDITION:
Stable. Vital signs within normal limits at time of discharge.

DISCHARGE MEDICATIONS:
As prescribed. Review with your pharmacist.

DISCHARGE INSTRUCTIONS:
1. Rest and limit physical activity for 7 days.
2. No driving or operating heavy machinery for 48 hours post-anesthesia.
3. Keep wound site clean and dry. Change dressing as instructed.
4. Diet: Regular diet. Stay well hydrated.
5. Contact surgeon immediately if fever >38.5°C, increased redness/swelling, or wound discharge.

FOLLOW-UP APPOINTMENT:
Schedule with your surgeon in 14 days.
Emergency contact: Hospital main line or nearest emergency department.

DISCHARGE PHYSICIAN: ___________________________`))

var genericReportTemplate = template.Must(template.New("generic").Parse(`{{.Title}}
Date: {{.Date}}
Patient ID: {{.PatientID}}

This report was generated from the structured assessment data on file.
Refer to the assessment endpoints for the underlying scores and findings.`))

type templateData struct {
	Date      string
	PatientID string
	Title     string
	Surgery   SurgeryContext
}

func renderTemplate(req GenerateRequest, surgery SurgeryContext) string {
	data := templateData{
		Date:      time.Now().UTC().Format("January 02, 2006 15:04 UTC"),
		PatientID: req.PatientID,
		Title:     reportTitles[req.ReportType],
		Surgery:   surgery,
	}

	var tmpl *template.Template
	switch req.ReportType {
	case models.ReportOperativeNote:
		tmpl = operativeNoteTemplate
	case models.ReportDischargeSummary:
		tmpl = dischargeSummaryTemplate
	default:
		tmpl = genericReportTemplate
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		// Templates are static; execution cannot fail with valid data.
		log.Printf("report template error: %v", err)
		return fmt.Sprintf("%s for patient %s", data.Title, req.PatientID)
	}
	return buf.String()
}
