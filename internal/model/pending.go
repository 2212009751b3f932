package model

// PendingAction is an intent whose required parameters have not all been
// collected yet. At most one exists per session; starting a new intent
// overwrites it. MissingFields order is the contract for which field the
// next user turn answers: values are always applied to MissingFields[0].
type PendingAction struct {
	Intent        string
	Params        map[string]string
	MissingFields []string
}

// NewPendingAction builds a pending action, copying both the collected
// params and the missing-field order so callers cannot alias them.
func NewPendingAction(intent string, params map[string]string, missing []string) *PendingAction {
	p := &PendingAction{
		Intent:        intent,
		Params:        make(map[string]string, len(params)),
		MissingFields: make([]string, len(missing)),
	}
	for k, v := range params {
		p.Params[k] = v
	}
	copy(p.MissingFields, missing)
	return p
}

// NextField returns the field the dialogue is currently asking about,
// or "" when nothing is missing.
func (p *PendingAction) NextField() string {
	if len(p.MissingFields) == 0 {
		return ""
	}
	return p.MissingFields[0]
}

// Fill assigns value to the current missing field and pops it. Filled
// fields never reappear in MissingFields.
func (p *PendingAction) Fill(value string) {
	if len(p.MissingFields) == 0 {
		return
	}
	if p.Params == nil {
		p.Params = make(map[string]string)
	}
	p.Params[p.MissingFields[0]] = value
	p.MissingFields = p.MissingFields[1:]
}

// Complete reports whether every required field has been collected.
func (p *PendingAction) Complete() bool {
	return len(p.MissingFields) == 0
}
