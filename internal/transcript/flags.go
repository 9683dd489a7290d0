package transcript

// Red flag messages. They are persisted verbatim, so changing them breaks
// deduplication against existing databases.
const (
	FlagNoStartPhrase   = "Didn't hit start phrase."
	FlagNoEndPhrase     = "Didn't hit end phrase."
	FlagShortSectionFmt = "Only %d %s lines."
	FlagBoilerplateFmt  = "BS line %s found in paragraph."
)

// Result is the structured output of Parse for one transcript.
type Result struct {
	Petitioner []Statement
	Respondent []Statement
	// Flags lists every heuristic failure in pipeline order.
	Flags []string
}

// WellFormed reports whether parsing raised no red flags.
func (r *Result) WellFormed() bool { return len(r.Flags) == 0 }

// Statements returns petitioner statements followed by respondent statements.
func (r *Result) Statements() []Statement {
	out := make([]Statement, 0, len(r.Petitioner)+len(r.Respondent))
	out = append(out, r.Petitioner...)
	return append(out, r.Respondent...)
}

// Parse runs the full segmentation pipeline over extracted text. It never
// fails: structural problems are reported in Result.Flags and an empty text
// yields empty sections and the corresponding flags.
func Parse(text string) *Result {
	var r Result

	body, flags := ClassifyLines(text)
	r.Flags = append(r.Flags, flags...)

	sections, flags := SplitSections(body)
	r.Flags = append(r.Flags, flags...)
	r.Flags = append(r.Flags, CheckSectionLengths(sections)...)

	paragraphs, flags := CoalesceParagraphs(sections.Petitioner)
	r.Flags = append(r.Flags, flags...)
	r.Petitioner = CoalesceStatements(paragraphs, SectionPetitioner)

	paragraphs, flags = CoalesceParagraphs(sections.Respondent)
	r.Flags = append(r.Flags, flags...)
	r.Respondent = CoalesceStatements(paragraphs, SectionRespondent)

	return &r
}
