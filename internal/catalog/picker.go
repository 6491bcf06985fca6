package catalog

// PickerState is the phase of the search sub-control. Loading, empty
// and populated are mutually exclusive; the view renders loading and
// empty as synthetic single-row placeholders in the result list.
type PickerState int

const (
	// PickerIdle: nothing searched yet, result list closed.
	PickerIdle PickerState = iota
	// PickerLoading: a search is in flight.
	PickerLoading
	// PickerEmpty: the search completed with no candidates.
	PickerEmpty
	// PickerOpen: candidates are listed, none chosen yet.
	PickerOpen
	// PickerChosen: the list collapsed to the selected candidate.
	PickerChosen
)

// Picker drives the catalog search sub-control: an explicit-submit
// lookup whose selection is the only way to populate the parent form's
// catalog field. It is a pure state machine; the TUI layer renders it
// and feeds events in.
type Picker struct {
	state    PickerState
	query    string
	results  []Result
	chosen   *Result
	errMsg   string
	touched  bool
	disabled bool
}

// NewPicker returns an idle picker.
func NewPicker() *Picker {
	return &Picker{}
}

// SetDisabled locks the control (lend mode presents it but rejects
// interaction).
func (p *Picker) SetDisabled(disabled bool) { p.disabled = disabled }

// Disabled reports whether the control rejects interaction.
func (p *Picker) Disabled() bool { return p.disabled }

// SetQuery updates the search text.
func (p *Picker) SetQuery(q string) {
	if p.disabled {
		return
	}
	p.query = q
}

// Query returns the current search text.
func (p *Picker) Query() string { return p.query }

// BeginSearch moves to the loading state. Returns false when the
// control is disabled or the query is empty; no search should be
// issued then. Submitting marks the control touched.
func (p *Picker) BeginSearch() bool {
	p.touched = true
	if p.disabled || p.query == "" {
		return false
	}
	p.state = PickerLoading
	p.errMsg = ""
	return true
}

// SetResults completes an in-flight search.
func (p *Picker) SetResults(results []Result) {
	p.results = results
	if len(results) == 0 {
		p.state = PickerEmpty
		return
	}
	p.state = PickerOpen
}

// Fail completes an in-flight search with an error message.
func (p *Picker) Fail(msg string) {
	p.state = PickerIdle
	p.errMsg = msg
}

// Err returns the last search failure message, if any.
func (p *Picker) Err() string { return p.errMsg }

// Choose collapses the open result list to the candidate with the
// given key and returns it. Choosing is ignored unless the list is
// open (or already collapsed to a prior choice).
func (p *Picker) Choose(key string) *Result {
	if p.disabled || (p.state != PickerOpen && p.state != PickerChosen) {
		return nil
	}
	for i := range p.results {
		if p.results[i].Key == key {
			chosen := p.results[i]
			p.chosen = &chosen
			p.results = []Result{chosen}
			p.state = PickerChosen
			return &chosen
		}
	}
	return nil
}

// Preselect seeds the control with an existing selection (edit and
// lend modes open on a book already chosen at add time).
func (p *Picker) Preselect(r Result) {
	p.chosen = &r
	p.results = []Result{r}
	p.state = PickerChosen
}

// Chosen returns the collapsed selection, or nil.
func (p *Picker) Chosen() *Result { return p.chosen }

// State returns the current phase.
func (p *Picker) State() PickerState { return p.state }

// Touched reports whether the user has interacted with the control.
func (p *Picker) Touched() bool { return p.touched }

// Rows returns what the result list should display. Loading and empty
// states come back as a single synthetic placeholder row so the three
// states stay visually distinct and mutually exclusive.
func (p *Picker) Rows() []Result {
	switch p.state {
	case PickerLoading:
		return []Result{{Title: "Loading..."}}
	case PickerEmpty:
		return []Result{{Title: "No books found", AuthorNames: []string{"Try searching for something!"}}}
	case PickerOpen, PickerChosen:
		return p.results
	}
	return nil
}
