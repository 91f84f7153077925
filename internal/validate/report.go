package validate

// Status classifies one report entry and the overall verdict.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Kind names the defect taxonomy. Passing entries carry no kind.
type Kind string

const (
	KindNotASealedSecret    Kind = "NotASealedSecret"
	KindMissingSection      Kind = "MissingSection"
	KindMissingKeys         Kind = "MissingKeys"
	KindUnresolvedReference Kind = "UnresolvedReference"
	KindAmbiguousReference  Kind = "AmbiguousReference"
	KindOrphanManifest      Kind = "OrphanManifest"
	KindTemplateDrift       Kind = "TemplateDrift"
)

// Check identifies which validation pass produced an entry.
const (
	CheckSchema     = "schema"
	CheckSections   = "sections"
	CheckKeys       = "keys"
	CheckTemplate   = "template"
	CheckFiles      = "files"
	CheckReferences = "references"
)

// Entry is one check result for one target.
type Entry struct {
	Check   string `json:"check"`
	Status  Status `json:"status"`
	Kind    Kind   `json:"kind,omitempty"`
	Target  string `json:"target"`
	File    string `json:"file,omitempty"`
	Message string `json:"message"`
}

// Summary counts entries by status.
type Summary struct {
	Candidates int `json:"candidates"`
	Checks     int `json:"checks"`
	Passed     int `json:"passed"`
	Warnings   int `json:"warnings"`
	Failures   int `json:"failures"`
}

// Report aggregates every check result of one validation run. It is built
// fresh per run and never persisted.
type Report struct {
	Verdict Status  `json:"verdict"`
	Summary Summary `json:"summary"`
	Entries []Entry `json:"entries"`
}

func (r *Report) add(e Entry) {
	r.Entries = append(r.Entries, e)
}

func (r *Report) pass(check, target, file, message string) {
	r.add(Entry{Check: check, Status: StatusPass, Target: target, File: file, Message: message})
}

func (r *Report) warn(check string, kind Kind, target, file, message string) {
	r.add(Entry{Check: check, Status: StatusWarn, Kind: kind, Target: target, File: file, Message: message})
}

func (r *Report) fail(check string, kind Kind, target, file, message string) {
	r.add(Entry{Check: check, Status: StatusFail, Kind: kind, Target: target, File: file, Message: message})
}

// finalize fills the summary and verdict. Warn-only runs still pass.
func (r *Report) finalize(candidates int) {
	r.Summary = Summary{Candidates: candidates, Checks: len(r.Entries)}
	for _, e := range r.Entries {
		switch e.Status {
		case StatusPass:
			r.Summary.Passed++
		case StatusWarn:
			r.Summary.Warnings++
		case StatusFail:
			r.Summary.Failures++
		}
	}

	switch {
	case r.Summary.Failures > 0:
		r.Verdict = StatusFail
	case r.Summary.Warnings > 0:
		r.Verdict = StatusWarn
	default:
		r.Verdict = StatusPass
	}
}

// Failed reports whether the run must exit non-zero.
func (r *Report) Failed() bool {
	return r.Verdict == StatusFail
}

// ByKind returns the entries of one defect kind.
func (r *Report) ByKind(kind Kind) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
