package doses

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"medication-dose-tracker/internal/domain/medications"
	"medication-dose-tracker/internal/platform/metrics"
	"medication-dose-tracker/internal/platform/table"
)

// -------------------------
// Fakes
// -------------------------

type testDosesRepo struct {
	mu    sync.Mutex
	doses map[string]Dose // key: SK de la dosis
}

func newTestDosesRepo() *testDosesRepo {
	return &testDosesRepo{doses: make(map[string]Dose)}
}

func (r *testDosesRepo) BatchCreate(ctx context.Context, items []Dose) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range items {
		r.doses[table.DoseSK(d.MedicationID, d.DueAt)] = d
	}
	return nil
}

func (r *testDosesRepo) ListUpcoming(ctx context.Context, careRecipientID string, from time.Time) ([]Dose, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Dose
	for _, d := range r.doses {
		if d.CareRecipientID != careRecipientID || d.Status != StatusUpcoming || d.DueAt.Before(from) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *testDosesRepo) MarkTaken(ctx context.Context, careRecipientID, medicationID string, dueAt, takenAt time.Time) (Dose, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := table.DoseSK(medicationID, dueAt)
	d, ok := r.doses[key]
	if !ok || d.CareRecipientID != careRecipientID || d.Status != StatusUpcoming {
		return Dose{}, ErrNotFound
	}

	d.Status = StatusTaken
	d.TakenAt = &takenAt
	d.UpdatedAt = takenAt
	r.doses[key] = d
	return d, nil
}

type testMedsRepo struct {
	mu        sync.Mutex
	meds      map[string]medications.Medication
	lookups   int
	lastIDs   []string
	lookupErr error
}

func newTestMedsRepo(meds ...medications.Medication) *testMedsRepo {
	r := &testMedsRepo{meds: make(map[string]medications.Medication)}
	for _, m := range meds {
		r.meds[m.ID] = m
	}
	return r
}

func (r *testMedsRepo) Create(ctx context.Context, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meds[m.ID] = m
	return nil
}

func (r *testMedsRepo) GetByID(ctx context.Context, careRecipientID, medicationID string) (medications.Medication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meds[medicationID]
	if !ok {
		return medications.Medication{}, medications.ErrNotFound
	}
	return m, nil
}

func (r *testMedsRepo) GetByIDs(ctx context.Context, careRecipientID string, medicationIDs []string) ([]medications.Medication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	r.lastIDs = append([]string(nil), medicationIDs...)
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	var out []medications.Medication
	for _, id := range medicationIDs {
		if m, ok := r.meds[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testMedsRepo) SetActive(ctx context.Context, careRecipientID, medicationID string, active bool, updatedAt time.Time) (medications.Medication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meds[medicationID]
	if !ok {
		return medications.Medication{}, medications.ErrNotFound
	}
	m.Active = active
	m.UpdatedAt = updatedAt
	r.meds[medicationID] = m
	return m, nil
}

func newTestService(repo Repository, meds medications.Repository, now time.Time) *Service {
	svc := NewService(repo, meds, testLogger(), metrics.New())
	svc.now = func() time.Time { return now }
	return svc
}

func upcomingDose(careRecipientID, medicationID string, dueAt time.Time) Dose {
	return Dose{
		CareRecipientID: careRecipientID,
		MedicationID:    medicationID,
		DueAt:           dueAt,
		Status:          StatusUpcoming,
		CreatedAt:       dueAt.Add(-24 * time.Hour),
		UpdatedAt:       dueAt.Add(-24 * time.Hour),
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_GetUpcomingDoses_DedupsMedicationLookup(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	med := medications.Medication{
		ID:              "med-1",
		CareRecipientID: "cr-1",
		Name:            "Ibuprofeno",
		Dosage:          "400mg",
		Recurrence:      medications.RecurrenceDaily,
		Active:          true,
	}

	repo := newTestDosesRepo()
	_ = repo.BatchCreate(context.Background(), []Dose{
		upcomingDose("cr-1", "med-1", now.Add(8*time.Hour)),
		upcomingDose("cr-1", "med-1", now.Add(20*time.Hour)),
	})
	meds := newTestMedsRepo(med)

	svc := newTestService(repo, meds, now)

	out, err := svc.GetUpcomingDoses(context.Background(), "cr-1")
	if err != nil {
		t.Fatalf("GetUpcomingDoses error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 doses, got %d", len(out))
	}
	if meds.lookups != 1 {
		t.Fatalf("expected 1 batch lookup, got %d", meds.lookups)
	}
	if len(meds.lastIDs) != 1 || meds.lastIDs[0] != "med-1" {
		t.Fatalf("expected deduped ids [med-1], got %v", meds.lastIDs)
	}

	for _, d := range out {
		if d.Medication.Name != "Ibuprofeno" || d.Medication.Dosage != "400mg" {
			t.Fatalf("dose not enriched: %+v", d)
		}
		if !strings.HasPrefix(d.DoseID, "DOSE#med-1#") {
			t.Fatalf("unexpected dose_id %q", d.DoseID)
		}
	}
}

func TestService_GetUpcomingDoses_DropsUnresolvableMedication(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	med := medications.Medication{ID: "med-1", CareRecipientID: "cr-1", Name: "A", Dosage: "1", Active: true}

	repo := newTestDosesRepo()
	_ = repo.BatchCreate(context.Background(), []Dose{
		upcomingDose("cr-1", "med-1", now.Add(8*time.Hour)),
		upcomingDose("cr-1", "med-ghost", now.Add(9*time.Hour)),
	})

	svc := newTestService(repo, newTestMedsRepo(med), now)

	out, err := svc.GetUpcomingDoses(context.Background(), "cr-1")
	if err != nil {
		t.Fatalf("GetUpcomingDoses error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected unresolvable dose dropped, got %d results", len(out))
	}
	if out[0].MedicationID != "med-1" {
		t.Fatalf("unexpected survivor: %+v", out[0])
	}
}

func TestService_GetUpcomingDoses_EmptyCareRecipient(t *testing.T) {
	svc := newTestService(newTestDosesRepo(), newTestMedsRepo(), time.Now())
	if _, err := svc.GetUpcomingDoses(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_GetUpcomingDoses_LookupErrorPropagates(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newTestDosesRepo()
	_ = repo.BatchCreate(context.Background(), []Dose{upcomingDose("cr-1", "med-1", now.Add(time.Hour))})

	meds := newTestMedsRepo()
	meds.lookupErr = errors.New("storage down")

	svc := newTestService(repo, meds, now)
	if _, err := svc.GetUpcomingDoses(context.Background(), "cr-1"); err == nil {
		t.Fatal("expected lookup error to propagate")
	}
}

func TestService_MarkAsTaken_Validation(t *testing.T) {
	svc := newTestService(newTestDosesRepo(), newTestMedsRepo(), time.Now())

	cases := []struct {
		name            string
		careRecipientID string
		medicationID    string
		dueAt           time.Time
	}{
		{"empty care recipient", "", "med-1", time.Now()},
		{"empty medication", "cr-1", " ", time.Now()},
		{"zero due_at", "cr-1", "med-1", time.Time{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.MarkAsTaken(context.Background(), tc.careRecipientID, tc.medicationID, tc.dueAt); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestService_MarkAsTaken_ConcurrentSingleWinner(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	due := now.Add(8 * time.Hour)

	repo := newTestDosesRepo()
	_ = repo.BatchCreate(context.Background(), []Dose{upcomingDose("cr-1", "med-1", due)})

	svc := newTestService(repo, newTestMedsRepo(), now)

	const callers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		notFound int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := svc.MarkAsTaken(context.Background(), "cr-1", "med-1", due)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
				if d.Status != StatusTaken || d.TakenAt == nil {
					t.Errorf("winner got inconsistent dose: %+v", d)
				}
			case errors.Is(err, ErrNotFound):
				notFound++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", wins)
	}
	if notFound != callers-1 {
		t.Fatalf("expected %d ErrNotFound, got %d", callers-1, notFound)
	}
}

func TestService_MarkAsTaken_TakenDoseNotRepeatable(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	due := now.Add(8 * time.Hour)

	repo := newTestDosesRepo()
	_ = repo.BatchCreate(context.Background(), []Dose{upcomingDose("cr-1", "med-1", due)})

	svc := newTestService(repo, newTestMedsRepo(), now)

	if _, err := svc.MarkAsTaken(context.Background(), "cr-1", "med-1", due); err != nil {
		t.Fatalf("first MarkAsTaken error: %v", err)
	}
	if _, err := svc.MarkAsTaken(context.Background(), "cr-1", "med-1", due); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second attempt, got %v", err)
	}
}
