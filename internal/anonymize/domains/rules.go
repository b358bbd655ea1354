package domains

// SequenceRule constrains where an event type may appear in a persona's
// history. MustFollow lists types that must occur earlier; RequiresClosure
// demands a later ClosureEventType before another open occurrence or the end
// of the sequence.
type SequenceRule struct {
	EventType        string
	MustFollow       []string
	CannotFollow     []string
	MaxOccurrences   int // 0 means unbounded
	RequiresClosure  bool
	ClosureEventType string
}

// RuleProvider resolves sequence rules per event type. Each supported domain
// has its own variant; domains without rules share the empty provider.
type RuleProvider interface {
	Domain() Domain
	// RulesFor returns the rule for an event type, if one exists.
	RulesFor(eventType string) (SequenceRule, bool)
}

type staticRules struct {
	domain Domain
	rules  map[string]SequenceRule
}

func (s staticRules) Domain() Domain { return s.domain }

func (s staticRules) RulesFor(eventType string) (SequenceRule, bool) {
	rule, ok := s.rules[eventType]
	return rule, ok
}

// HasRules reports whether the provider defines any rule at all, letting the
// merger skip validation entirely for rule-free domains.
func HasRules(p RuleProvider) bool {
	s, ok := p.(staticRules)
	return ok && len(s.rules) > 0
}

var criminalJusticeRules = staticRules{
	domain: DomainCriminalJustice,
	rules: map[string]SequenceRule{
		"arrest":    {EventType: "arrest"},
		"charge":    {EventType: "charge", MustFollow: []string{"arrest"}},
		"trial":     {EventType: "trial", MustFollow: []string{"charge"}},
		"sentencing": {
			EventType:  "sentencing",
			MustFollow: []string{"trial"},
		},
		"incarceration": {
			EventType:        "incarceration",
			MustFollow:       []string{"sentencing"},
			RequiresClosure:  true,
			ClosureEventType: "release",
		},
		"release":   {EventType: "release", MustFollow: []string{"incarceration"}},
		"probation": {EventType: "probation", MustFollow: []string{"sentencing"}},
		"appeal":    {EventType: "appeal", MustFollow: []string{"sentencing"}},
	},
}

var healthcareRules = staticRules{
	domain: DomainHealthcare,
	rules: map[string]SequenceRule{
		"admission": {
			EventType:        "admission",
			RequiresClosure:  true,
			ClosureEventType: "discharge",
		},
		"discharge":  {EventType: "discharge", MustFollow: []string{"admission"}},
		"diagnosis":  {EventType: "diagnosis"},
		"treatment":  {EventType: "treatment", MustFollow: []string{"diagnosis"}},
		"surgery":    {EventType: "surgery", MustFollow: []string{"admission"}},
		"medication": {EventType: "medication", MustFollow: []string{"diagnosis"}},
		"follow_up":  {EventType: "follow_up", MustFollow: []string{"discharge"}},
	},
}

var educationRules = staticRules{
	domain: DomainEducation,
	rules: map[string]SequenceRule{
		"enrollment": {EventType: "enrollment"},
		"assessment": {EventType: "assessment", MustFollow: []string{"enrollment"}},
		"grade":      {EventType: "grade", MustFollow: []string{"enrollment"}},
		"promotion":  {EventType: "promotion", MustFollow: []string{"grade"}},
		"graduation": {EventType: "graduation", MustFollow: []string{"enrollment"}},
		"suspension": {EventType: "suspension", MustFollow: []string{"enrollment"}},
	},
}

// RulesFor returns the sequence rule provider for a domain. Domains without
// defined rules get an empty provider, which makes validation a passthrough.
func RulesFor(d Domain) RuleProvider {
	switch d {
	case DomainCriminalJustice:
		return criminalJusticeRules
	case DomainHealthcare:
		return healthcareRules
	case DomainEducation:
		return educationRules
	default:
		return staticRules{domain: d}
	}
}
