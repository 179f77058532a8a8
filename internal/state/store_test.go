package state

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(filepath.Join(dir, "notes"), filepath.Join(dir, "journal"))
}

func TestCaseIDIdempotent(t *testing.T) {
	a := NewCaseID("argued with a teammate about scope")
	b := NewCaseID("argued with a teammate about scope")
	c := NewCaseID("missed a deadline")

	if a != b {
		t.Errorf("same summary must yield the same id: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("different summaries collided")
	}
	if len(a) != 64 {
		t.Errorf("expected sha256 hex id, got %d chars", len(a))
	}
}

func TestProfileMergePreservesFields(t *testing.T) {
	store := newTestStore(t)

	if err := store.PersistProfile(&Profile{MBTI: "ENTP"}); err != nil {
		t.Fatal(err)
	}
	if err := store.PersistProfile(&Profile{KeyStrength: "focus; patience; honesty"}); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadProfile()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.MBTI != "ENTP" {
		t.Errorf("earlier field lost: %+v", loaded)
	}
	if loaded.KeyStrength != "focus; patience; honesty" {
		t.Errorf("later field missing: %+v", loaded)
	}
}

func TestProfileMergeOverwritesSameField(t *testing.T) {
	store := newTestStore(t)

	if err := store.PersistProfile(&Profile{MBTI: "ENTP"}); err != nil {
		t.Fatal(err)
	}
	if err := store.PersistProfile(&Profile{MBTI: "INFJ"}); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadProfile()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.MBTI != "INFJ" {
		t.Errorf("expected latest value, got %q", loaded.MBTI)
	}
}

func TestPersistCaseAppends(t *testing.T) {
	store := newTestStore(t)

	for _, summary := range []string{"case one", "case two"} {
		c := ReflectionCase{
			CaseID:       NewCaseID(summary),
			Summary:      summary,
			NewPrinciple: "pause before replying to " + summary,
			SessionID:    "s1",
		}
		if err := store.PersistCase(c); err != nil {
			t.Fatal(err)
		}
	}

	cases, err := store.LoadCases()
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}

	principles, err := store.LoadPrinciplesFromCases()
	if err != nil {
		t.Fatal(err)
	}
	if len(principles) != 2 {
		t.Fatalf("expected 2 principles, got %d", len(principles))
	}
	if principles[0] != "pause before replying to case one" {
		t.Errorf("unexpected principle order: %v", principles)
	}
}

func TestJournalTemplateRoundTrip(t *testing.T) {
	store := newTestStore(t)

	template, err := store.ReadJournalTemplate()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(template, "{DATE}") {
		t.Errorf("default template missing date placeholder")
	}
	if !strings.HasPrefix(template, "# Daily Journal - {DATE}") {
		t.Errorf("unexpected template heading: %q", strings.SplitN(template, "\n", 2)[0])
	}

	updated := "# Journal {DATE}\n\n## Today's Reflection\nfocus\n"
	if err := store.UpdateJournalTemplate(updated); err != nil {
		t.Fatal(err)
	}
	got, err := store.ReadJournalTemplate()
	if err != nil {
		t.Fatal(err)
	}
	if got != updated {
		t.Errorf("template not replaced wholesale")
	}
}

func TestNewJournalSubstitutesDate(t *testing.T) {
	store := newTestStore(t)
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	path, err := store.NewJournal(day)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "journal-2026-03-14.md" {
		t.Errorf("unexpected journal path: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "2026-03-14") {
		t.Errorf("date not substituted")
	}
	if strings.Contains(string(data), "{DATE}") {
		t.Errorf("placeholder survived substitution")
	}
}

func TestStoreCaseToolSingleInvocation(t *testing.T) {
	store := newTestStore(t)
	tool := NewStoreCaseTool(store, "s1", func() []string { return []string{"user: it went badly"} })

	args := map[string]any{
		"case_summary":    "shipped a bug under pressure",
		"case_details":    "skipped review to hit a date",
		"detail_analysis": "urgency overrode process",
		"new_principle":   "never trade review for speed",
	}
	if err := tool.Validate(args); err != nil {
		t.Fatal(err)
	}
	result, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("first invocation failed: %v", result.Error)
	}
	if tool.StoredCase() == nil || tool.StoredCase().NewPrinciple == "" {
		t.Fatal("stored case not captured")
	}

	second, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatal(err)
	}
	if second.Success {
		t.Error("second invocation must be refused")
	}

	cases, err := store.LoadCases()
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 1 {
		t.Fatalf("expected exactly 1 stored case, got %d", len(cases))
	}
	if len(cases[0].Dialog) != 1 {
		t.Errorf("dialog transcript missing")
	}
}

func TestUpdateProfileToolWritesBoundField(t *testing.T) {
	store := newTestStore(t)
	tool := NewUpdateProfileTool(store)
	tool.Bind(FieldMBTI)

	result, err := tool.Execute(context.Background(), map[string]any{"content": "INTJ"})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("update failed: %v", result.Error)
	}

	profile, err := store.LoadProfile()
	if err != nil {
		t.Fatal(err)
	}
	if profile.MBTI != "INTJ" {
		t.Errorf("field not written: %+v", profile)
	}
}

func TestRegistrySharesDirectories(t *testing.T) {
	dir := t.TempDir()
	registry := NewRegistry(filepath.Join(dir, "notes"), filepath.Join(dir, "journal"))

	if err := registry.ForSession("a").PersistProfile(&Profile{MBTI: "ENFP"}); err != nil {
		t.Fatal(err)
	}
	profile, err := registry.ForSession("b").LoadProfile()
	if err != nil {
		t.Fatal(err)
	}
	if profile.MBTI != "ENFP" {
		t.Errorf("sessions must share durable state")
	}
	if registry.ForSession("a") != registry.ForSession("a") {
		t.Errorf("same session must reuse its store")
	}
}
