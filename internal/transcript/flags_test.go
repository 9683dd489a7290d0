package transcript

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/hyperjump/oralarg/internal/transcript/transcripttest"
)

func TestParse_emptyText(t *testing.T) {
	r := Parse("")
	want := []string{
		FlagNoStartPhrase,
		FlagNoEndPhrase,
		"Only 0 petitioner lines.",
		"Only 0 respondent lines.",
	}
	if !reflect.DeepEqual(r.Flags, want) {
		t.Errorf("flags = %q, want %q", r.Flags, want)
	}
	if len(r.Statements()) != 0 {
		t.Errorf("statements = %+v", r.Statements())
	}
	if r.WellFormed() {
		t.Error("empty text reported well formed")
	}
}

func TestParse_noStartPhrase(t *testing.T) {
	r := Parse("ON BEHALF OF THE PETITIONER\nMR. SMITH: Hello.\n(Whereupon, the case in the above-entitled")
	if len(r.Flags) == 0 || r.Flags[0] != FlagNoStartPhrase {
		t.Errorf("flags = %q", r.Flags)
	}
	if len(r.Statements()) != 0 {
		t.Errorf("statements = %+v", r.Statements())
	}
}

func TestParse_sample(t *testing.T) {
	r := Parse(transcripttest.Sample())
	if !r.WellFormed() {
		t.Fatalf("flags = %q", r.Flags)
	}
	if len(r.Petitioner) != transcripttest.PetitionerStatements {
		t.Errorf("petitioner statements = %d, want %d", len(r.Petitioner), transcripttest.PetitionerStatements)
	}
	if len(r.Respondent) != transcripttest.RespondentStatements {
		t.Errorf("respondent statements = %d, want %d", len(r.Respondent), transcripttest.RespondentStatements)
	}

	opening := r.Petitioner[0]
	if opening.Speaker != "MR. SMITH" {
		t.Errorf("opening speaker = %q", opening.Speaker)
	}
	wantOpening := "Mr. Chief Justice, and may it please the Court: This case concerns the interpretation of a"
	if !reflect.DeepEqual(opening.Paragraphs, []string{wantOpening}) {
		t.Errorf("opening paragraphs = %q", opening.Paragraphs)
	}

	q := r.Petitioner[1]
	if q.Speaker != "JUSTICE GINSBURG" || !q.EndsWithQuestion || q.EndedByInterruption {
		t.Errorf("first question = %+v", q)
	}
	if want := "Is that really the question presented in case 1?"; q.Paragraphs[0] != want {
		t.Errorf("question text = %q, want %q", q.Paragraphs[0], want)
	}

	a := r.Petitioner[2]
	if !a.EndedByInterruption {
		t.Errorf("answer should be interrupted: %+v", a)
	}
	if want := "Yes, Your Honor, it is, and the answer is straight-forward --"; a.Paragraphs[0] != want {
		t.Errorf("answer text = %q, want %q", a.Paragraphs[0], want)
	}

	last := r.Petitioner[len(r.Petitioner)-1]
	if !last.IncludesLaughter || last.EndedByInterruption {
		t.Errorf("last petitioner statement = %+v", last)
	}

	for i, s := range r.Respondent {
		if !s.IsRespondentSide() {
			t.Fatalf("respondent statement %d has side %v", i, s.Side)
		}
	}
	if closing := r.Respondent[len(r.Respondent)-1]; closing.Speaker != "CHIEF JUSTICE ROBERTS" {
		t.Errorf("closing speaker = %q", closing.Speaker)
	}
	for i := 1; i <= transcripttest.Rounds; i++ {
		s := r.Respondent[2*i-1]
		if want := fmt.Sprintf("What about example %d?", i); s.Paragraphs[0] != want || !s.EndsWithQuestion {
			t.Errorf("respondent question %d = %+v", i, s)
		}
	}
}

func TestParse_missingEndPhrase(t *testing.T) {
	r := Parse(transcripttest.SampleWithoutEnd())
	if !reflect.DeepEqual(r.Flags, []string{FlagNoEndPhrase}) {
		t.Errorf("flags = %q", r.Flags)
	}
	if len(r.Respondent) != transcripttest.RespondentStatements {
		t.Errorf("respondent statements = %d", len(r.Respondent))
	}
}

func TestParse_flagOrder(t *testing.T) {
	text := "P R O C E E D I N G S\n\nON BEHALF OF THE PETITIONER\nMR. SMITH: Alderson Reporting Company\nON BEHALF OF THE RESPONDENT\nMS. JONES: Suite 400 is here"
	r := Parse(text)
	want := []string{
		FlagNoEndPhrase,
		"Only 1 petitioner lines.",
		"Only 1 respondent lines.",
		"BS line MR. SMITH: Alderson Reporting Company found in paragraph.",
		"BS line MS. JONES: Suite 400 is here found in paragraph.",
	}
	if !reflect.DeepEqual(r.Flags, want) {
		t.Errorf("flags =\n%q\nwant\n%q", r.Flags, want)
	}
	// Flagged paragraphs stay in the statement content.
	if got := r.Petitioner[0].Paragraphs; !reflect.DeepEqual(got, []string{"Alderson Reporting Company"}) {
		t.Errorf("petitioner content = %q", got)
	}
}
