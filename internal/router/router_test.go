package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mem "medication-dose-tracker/internal/adapters/storage/memory"
	"medication-dose-tracker/internal/domain/doses"
	"medication-dose-tracker/internal/domain/medications"
	"medication-dose-tracker/internal/platform/logger"
	"medication-dose-tracker/internal/platform/metrics"
	"medication-dose-tracker/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.New(logger.Options{Level: logger.Error, Out: io.Discard})
	met := metrics.New()

	medsRepo := mem.NewMedicationsRepo()
	dosesRepo := mem.NewDosesRepo()

	generator := doses.NewGenerator(dosesRepo, log, met, nil)
	medsSvc := medications.NewService(medsRepo, generator, nil, log, met)
	dosesSvc := doses.NewService(dosesRepo, medsRepo, log, met)

	ts := httptest.NewServer(router.NewRouter(router.Options{
		Medications: medsSvc,
		Doses:       dosesSvc,
		Logger:      log,
		Metrics:     met,
	}))
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, payload any) (*http.Response, []byte) {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, b
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestHTTP_EndToEnd_MedicationDoseLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// 1) Crear medicamento DAILY; la generación síncrona corre en el request.
	// Dos horarios: los días 1-6 del horizonte aportan 12 dosis sin importar
	// la hora a la que corra el test.
	resp, body := postJSON(t, ts.URL+"/care-recipients/cr-1/medications", map[string]any{
		"name":         "Ibuprofeno",
		"dosage":       "400mg",
		"notes":        "con comida",
		"recurrence":   "DAILY",
		"times_of_day": []string{"11:58", "23:59"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, body)
	}

	var med struct {
		ID              string `json:"id"`
		CareRecipientID string `json:"care_recipient_id"`
		Active          bool   `json:"active"`
	}
	if err := json.Unmarshal(body, &med); err != nil {
		t.Fatalf("decode medication: %v", err)
	}
	if med.ID == "" || med.CareRecipientID != "cr-1" || !med.Active {
		t.Fatalf("unexpected medication: %s", body)
	}

	// 2) Dosis pendientes, enriquecidas con el medicamento.
	var upcoming []struct {
		DoseID       string `json:"dose_id"`
		MedicationID string `json:"medication_id"`
		DueAt        string `json:"due_at"`
		Status       string `json:"status"`
		Medication   struct {
			Name   string `json:"name"`
			Dosage string `json:"dosage"`
		} `json:"medication"`
	}
	resp = getJSON(t, ts.URL+"/care-recipients/cr-1/doses/upcoming", &upcoming)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upcoming: expected 200, got %d", resp.StatusCode)
	}
	if len(upcoming) < 12 || len(upcoming) > 14 {
		t.Fatalf("expected 12-14 upcoming doses, got %d", len(upcoming))
	}

	first := upcoming[0]
	if first.MedicationID != med.ID || first.Status != "UPCOMING" {
		t.Fatalf("unexpected dose: %+v", first)
	}
	if first.Medication.Name != "Ibuprofeno" || first.Medication.Dosage != "400mg" {
		t.Fatalf("dose not enriched: %+v", first)
	}
	if !strings.HasPrefix(first.DoseID, "DOSE#"+med.ID+"#") {
		t.Fatalf("unexpected dose_id: %s", first.DoseID)
	}

	// 3) Marcarla como tomada.
	markURL := ts.URL + "/care-recipients/cr-1/doses/mark-taken"
	resp, body = postJSON(t, markURL, map[string]any{
		"medication_id": first.MedicationID,
		"due_at":        first.DueAt,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mark-taken: expected 200, got %d: %s", resp.StatusCode, body)
	}

	var marked struct {
		Message string `json:"message"`
		Dose    struct {
			Status  string  `json:"status"`
			TakenAt *string `json:"taken_at"`
		} `json:"dose"`
	}
	if err := json.Unmarshal(body, &marked); err != nil {
		t.Fatalf("decode mark response: %v", err)
	}
	if marked.Dose.Status != "TAKEN" || marked.Dose.TakenAt == nil {
		t.Fatalf("unexpected mark response: %s", body)
	}

	// 4) Segunda vez sobre la misma tripleta: 404.
	resp, _ = postJSON(t, markURL, map[string]any{
		"medication_id": first.MedicationID,
		"due_at":        first.DueAt,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("repeat mark-taken: expected 404, got %d", resp.StatusCode)
	}

	// 5) La dosis tomada ya no aparece en pendientes.
	var after []struct {
		DoseID string `json:"dose_id"`
	}
	getJSON(t, ts.URL+"/care-recipients/cr-1/doses/upcoming", &after)
	if len(after) >= len(upcoming) {
		t.Fatalf("expected fewer upcoming after mark, got %d (was %d)", len(after), len(upcoming))
	}
	for _, d := range after {
		if d.DoseID == first.DoseID {
			t.Fatalf("taken dose still listed: %s", d.DoseID)
		}
	}

	// 6) Desactivar el medicamento.
	resp, body = postJSON(t, ts.URL+"/care-recipients/cr-1/medications/"+med.ID+"/deactivate", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deactivate: expected 200, got %d: %s", resp.StatusCode, body)
	}
	var deact struct {
		Medication struct {
			Active bool `json:"active"`
		} `json:"medication"`
	}
	if err := json.Unmarshal(body, &deact); err != nil {
		t.Fatalf("decode deactivate: %v", err)
	}
	if deact.Medication.Active {
		t.Fatalf("expected inactive medication: %s", body)
	}
}

func TestHTTP_CreateMedication_ValidationError(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postJSON(t, ts.URL+"/care-recipients/cr-1/medications", map[string]any{
		"name":       "Ibuprofeno",
		"dosage":     "400mg",
		"recurrence": "DAILY",
		// sin times_of_day
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
	}
}

func TestHTTP_DeactivateUnknownMedication(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := postJSON(t, ts.URL+"/care-recipients/cr-1/medications/nope/deactivate", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHTTP_MarkTaken_BadDueAt(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postJSON(t, ts.URL+"/care-recipients/cr-1/doses/mark-taken", map[string]any{
		"medication_id": "med-1",
		"due_at":        "mañana a las 8",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
	}
}

func TestHTTP_Health(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	if string(b) != "ok" {
		t.Fatalf("unexpected body %q", b)
	}
}
