package form

// Step is the current wizard page, always within [FirstStep, LastStep].
type Step int

const (
	StepPersonal Step = iota + 1
	StepAddress
	StepTribal
	StepHousing
	StepGrant
)

const (
	FirstStep  = StepPersonal
	LastStep   = StepGrant
	StepsTotal = int(LastStep)
)

// Clamp returns s limited to [FirstStep, LastStep].
func (s Step) Clamp() Step {
	if s < FirstStep {
		return FirstStep
	}
	if s > LastStep {
		return LastStep
	}
	return s
}

// View is what the view layer renders for one step.
type View struct {
	Step        Step
	Title       string
	Description string
	Fields      []Field
}

// ViewOf returns the view for step using the fields of c. Out-of-range steps
// are clamped first.
func (c *Catalog) ViewOf(step Step) View {
	step = step.Clamp()
	v := View{Step: step, Fields: c.Fields(step)}
	switch step {
	case StepPersonal:
		v.Title = "Personal Information"
		v.Description = "Tell us who is applying."
	case StepAddress:
		v.Title = "Address"
		v.Description = "Where you live now, including your chapter house."
	case StepTribal:
		v.Title = "Tribal Information"
		v.Description = "Enrollment details from your census record and CIB."
	case StepHousing:
		v.Title = "Housing & Income"
		v.Description = "Your household, income and current housing."
	case StepGrant:
		v.Title = "Grant Request"
		v.Description = "What assistance you are requesting and why."
	}
	return v
}
