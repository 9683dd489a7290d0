package transcript

import (
	"reflect"
	"testing"
)

func TestCoalesceParagraphs(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			name:  "continuation joined with a space",
			lines: []string{"MR. SMITH: Thank you,", "Your Honor."},
			want:  []string{"MR. SMITH: Thank you, Your Honor."},
		},
		{
			name:  "mid-word hyphenation joined without a space",
			lines: []string{"JUSTICE KAGAN: This is a consti-", "tutional question."},
			want:  []string{"JUSTICE KAGAN: This is a consti-tutional question."},
		},
		{
			name:  "free-standing hyphen keeps the space",
			lines: []string{"JUSTICE KAGAN: Well -", "counsel"},
			want:  []string{"JUSTICE KAGAN: Well - counsel"},
		},
		{
			name:  "indented line starts a paragraph",
			lines: []string{"JUSTICE ROBERTS: Counsel, proceed.", "  Thank you, Your Honor."},
			want:  []string{"JUSTICE ROBERTS: Counsel, proceed.", "Thank you, Your Honor."},
		},
		{
			name:  "tab indentation starts a paragraph",
			lines: []string{"first", "\tsecond"},
			want:  []string{"first", "second"},
		},
		{
			name:  "speaker prefix starts a paragraph",
			lines: []string{"JUSTICE ALITO: Question.", "MR. SMITH: Answer,", "continued."},
			want:  []string{"JUSTICE ALITO: Question.", "MR. SMITH: Answer, continued."},
		},
		{
			name:  "first line opens a paragraph without a speaker",
			lines: []string{"no speaker here", "and more"},
			want:  []string{"no speaker here and more"},
		},
		{
			name:  "spaces collapsed",
			lines: []string{"JUSTICE SCALIA:   too    many", "spaces   here  "},
			want:  []string{"JUSTICE SCALIA: too many spaces here"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, flags := CoalesceParagraphs(tt.lines)
			if len(flags) != 0 {
				t.Errorf("flags = %v", flags)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCoalesceParagraphs_empty(t *testing.T) {
	got, flags := CoalesceParagraphs(nil)
	if len(got) != 0 || len(flags) != 0 {
		t.Errorf("got %q, flags %v", got, flags)
	}
}

func TestCoalesceParagraphs_flagsBoilerplateButKeepsIt(t *testing.T) {
	lines := []string{
		"MR. SMITH: Yes.",
		"  ALDERSON REPORTING COMPANY, INC.",
		"  the official record",
	}
	got, flags := CoalesceParagraphs(lines)
	want := []string{"MR. SMITH: Yes.", "ALDERSON REPORTING COMPANY, INC.", "the official record"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("paragraphs = %q, want %q", got, want)
	}
	wantFlags := []string{
		"BS line ALDERSON REPORTING COMPANY, INC. found in paragraph.",
		"BS line the official record found in paragraph.",
	}
	if !reflect.DeepEqual(flags, wantFlags) {
		t.Errorf("flags = %q, want %q", flags, wantFlags)
	}
}

func TestNormalizeParagraph_idempotent(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"a  b   c",
		"   leading and trailing   ",
		"JUSTICE GINSBURG:    Is that so?",
		"tabs\tare  kept\t\tas is",
	}
	for _, in := range inputs {
		once := NormalizeParagraph(in)
		if twice := NormalizeParagraph(once); twice != once {
			t.Errorf("NormalizeParagraph not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSpeakerPrefix(t *testing.T) {
	tests := []struct {
		in      string
		speaker string
		ok      bool
	}{
		{"JUSTICE SCALIA: Yes.", "JUSTICE SCALIA", true},
		{"  MR. SMITH: Good morning.", "MR. SMITH", true},
		{"QUESTION: Is it?", "QUESTION", true},
		{"Court: This case", "", false},
		{"no speaker", "", false},
	}
	for _, tt := range tests {
		speaker, ok := SpeakerPrefix(tt.in)
		if speaker != tt.speaker || ok != tt.ok {
			t.Errorf("SpeakerPrefix(%q) = %q, %v; want %q, %v", tt.in, speaker, ok, tt.speaker, tt.ok)
		}
	}
}
