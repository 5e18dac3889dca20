package table

import (
	"sort"
	"testing"
	"time"
)

func TestDoseSK_RoundTrip(t *testing.T) {
	dueAt := time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC)

	sk := DoseSK("med-123", dueAt)
	if sk != "DOSE#med-123#2025-01-02T08:30:00.000Z" {
		t.Fatalf("unexpected SK: %s", sk)
	}

	medID, parsed, err := ParseDoseSK(sk)
	if err != nil {
		t.Fatalf("ParseDoseSK error: %v", err)
	}
	if medID != "med-123" {
		t.Fatalf("expected med-123, got %s", medID)
	}
	if !parsed.Equal(dueAt) {
		t.Fatalf("expected %v, got %v", dueAt, parsed)
	}
}

func TestDoseSK_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	local := time.Date(2025, 1, 2, 3, 30, 0, 0, loc) // 08:30 UTC

	sk := DoseSK("med-1", local)
	if sk != "DOSE#med-1#2025-01-02T08:30:00.000Z" {
		t.Fatalf("expected UTC rendering, got %s", sk)
	}
}

func TestDoseSK_LexicographicMatchesChronological(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	times := []time.Time{
		base.Add(30 * 24 * time.Hour),
		base,
		base.Add(90 * time.Minute),
		base.Add(12 * time.Hour),
		base.Add(24 * time.Hour),
	}

	sks := make([]string, 0, len(times))
	for _, due := range times {
		sks = append(sks, DoseSK("med-1", due))
	}
	sort.Strings(sks)

	var prev time.Time
	for i, sk := range sks {
		_, due, err := ParseDoseSK(sk)
		if err != nil {
			t.Fatalf("ParseDoseSK(%s): %v", sk, err)
		}
		if i > 0 && due.Before(prev) {
			t.Fatalf("lexicographic order broke chronology at %s", sk)
		}
		prev = due
	}
}

func TestParseDoseSK_Invalid(t *testing.T) {
	cases := []string{
		"",
		"MED#med-1",
		"DOSE#",
		"DOSE#med-1",
		"DOSE#med-1#",
		"DOSE#med-1#not-a-timestamp",
		"DOSE#med-1#2025-01-02T08:30:00Z", // precisión incorrecta
	}

	for _, sk := range cases {
		if _, _, err := ParseDoseSK(sk); err == nil {
			t.Fatalf("expected error for %q", sk)
		}
	}
}

func TestCarePK_RoundTrip(t *testing.T) {
	pk := CarePK("cr-1")
	if pk != "CARE#cr-1" {
		t.Fatalf("unexpected PK: %s", pk)
	}

	id, err := ParseCarePK(pk)
	if err != nil || id != "cr-1" {
		t.Fatalf("ParseCarePK: id=%s err=%v", id, err)
	}

	if _, err := ParseCarePK("MED#x"); err == nil {
		t.Fatal("expected error for non-care PK")
	}
}

func TestMedicationSK_RoundTrip(t *testing.T) {
	sk := MedicationSK("med-9")
	if sk != "MED#med-9" {
		t.Fatalf("unexpected SK: %s", sk)
	}

	id, err := ParseMedicationSK(sk)
	if err != nil || id != "med-9" {
		t.Fatalf("ParseMedicationSK: id=%s err=%v", id, err)
	}
}
