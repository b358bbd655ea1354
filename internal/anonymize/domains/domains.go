// Package domains holds the static per-domain vocabularies and event
// sequence rules the engine validates against. Unknown domains resolve to a
// permissive empty configuration rather than an error.
package domains

// Domain tags a people-events dataset with its subject area.
type Domain string

const (
	DomainCriminalJustice Domain = "criminal_justice"
	DomainHealthcare      Domain = "healthcare"
	DomainEducation       Domain = "education"
	DomainSocialServices  Domain = "social_services"
	DomainEmployment      Domain = "employment"
	DomainCustom          Domain = "custom"
)

// Config describes the vocabulary and precision settings for a domain.
// Empty EventTypes or Outcomes means "no restriction".
type Config struct {
	Domain              Domain
	EventTypes          []string
	Outcomes            []string
	SensitiveFields     map[string]struct{}
	PreserveFields      map[string]struct{}
	TemporalPrecision   string // day, week, month, quarter, year
	GeographicPrecision string // address, city, county, state, country
}

// IsValidEventType reports whether the event type belongs to this domain's
// vocabulary. An empty vocabulary accepts everything.
func (c Config) IsValidEventType(eventType string) bool {
	if len(c.EventTypes) == 0 {
		return true
	}
	for _, t := range c.EventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

// IsValidOutcome reports whether the outcome belongs to this domain's
// vocabulary. An empty vocabulary accepts everything.
func (c Config) IsValidOutcome(outcome string) bool {
	if len(c.Outcomes) == 0 {
		return true
	}
	for _, o := range c.Outcomes {
		if o == outcome {
			return true
		}
	}
	return false
}

func fieldSet(fields ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

var criminalJusticeConfig = Config{
	Domain: DomainCriminalJustice,
	EventTypes: []string{
		"arrest", "charge", "arraignment", "plea", "trial", "sentencing",
		"probation", "parole", "release", "violation", "appeal", "expungement",
		"bail_hearing", "pretrial_detention", "community_service",
		"incarceration",
	},
	Outcomes: []string{
		"guilty", "not_guilty", "dismissed", "plea_bargain", "convicted",
		"acquitted", "pending", "completed", "violated", "granted", "denied",
		"reduced", "enhanced",
	},
	SensitiveFields: fieldSet(
		"case_number", "arrest_warrant", "judge_name", "prosecutor_name",
		"defense_attorney", "victim_name",
	),
	PreserveFields: fieldSet(
		"charge_severity", "sentence_length", "offense_category", "case_outcome",
	),
	TemporalPrecision:   "month",
	GeographicPrecision: "county",
}

var healthcareConfig = Config{
	Domain: DomainHealthcare,
	EventTypes: []string{
		"admission", "discharge", "visit", "diagnosis", "treatment",
		"prescription", "surgery", "test", "immunization", "emergency_visit",
		"telehealth", "referral", "follow_up", "medication",
	},
	Outcomes: []string{
		"recovered", "improved", "stable", "declined", "deceased",
		"transferred", "discharged", "readmitted", "completed", "ongoing",
		"cancelled",
	},
	SensitiveFields: fieldSet(
		"patient_id", "mrn", "provider_name", "facility_name", "insurance_id",
		"diagnosis_code",
	),
	PreserveFields: fieldSet(
		"condition_type", "treatment_type", "outcome_status", "length_of_stay",
	),
	TemporalPrecision:   "week",
	GeographicPrecision: "city",
}

var educationConfig = Config{
	Domain: DomainEducation,
	EventTypes: []string{
		"enrollment", "attendance", "assessment", "grade", "promotion",
		"graduation", "suspension", "expulsion", "transfer", "scholarship",
		"intervention", "parent_conference",
	},
	Outcomes: []string{
		"passed", "failed", "graduated", "promoted", "retained", "withdrawn",
		"completed", "in_progress", "excused", "unexcused", "awarded",
	},
	SensitiveFields: fieldSet(
		"student_id", "teacher_name", "school_name", "guardian_name",
		"test_scores",
	),
	PreserveFields: fieldSet(
		"grade_level", "subject_area", "performance_level", "attendance_rate",
	),
	TemporalPrecision:   "month",
	GeographicPrecision: "city",
}

var socialServicesConfig = Config{
	Domain: DomainSocialServices,
	EventTypes: []string{
		"application", "eligibility_determination", "benefit_received",
		"case_opened", "case_closed", "home_visit", "assessment", "referral",
		"service_provided", "review", "appeal", "sanction",
	},
	Outcomes: []string{
		"approved", "denied", "pending", "completed", "ongoing", "closed",
		"successful", "unsuccessful", "compliant", "non_compliant", "appealed",
		"overturned",
	},
	SensitiveFields: fieldSet(
		"case_number", "caseworker_name", "benefit_amount", "income",
		"household_members",
	),
	PreserveFields: fieldSet(
		"benefit_type", "service_category", "outcome_status", "duration",
	),
	TemporalPrecision:   "month",
	GeographicPrecision: "county",
}

var employmentConfig = Config{
	Domain: DomainEmployment,
	EventTypes: []string{
		"hire", "promotion", "demotion", "transfer", "performance_review",
		"training", "disciplinary_action", "leave", "return_from_leave",
		"resignation", "termination", "retirement",
	},
	Outcomes: []string{
		"successful", "unsuccessful", "completed", "ongoing", "approved",
		"denied", "voluntary", "involuntary", "promoted", "terminated",
	},
	SensitiveFields: fieldSet(
		"employee_id", "ssn", "salary", "manager_name", "department",
	),
	PreserveFields: fieldSet(
		"job_category", "performance_rating", "tenure", "employment_status",
	),
	TemporalPrecision:   "month",
	GeographicPrecision: "city",
}

var configs = map[Domain]Config{
	DomainCriminalJustice: criminalJusticeConfig,
	DomainHealthcare:      healthcareConfig,
	DomainEducation:       educationConfig,
	DomainSocialServices:  socialServicesConfig,
	DomainEmployment:      employmentConfig,
}

// ConfigFor returns the configuration for a domain. Unknown domains get a
// permissive custom config with no vocabulary restrictions.
func ConfigFor(d Domain) Config {
	if cfg, ok := configs[d]; ok {
		return cfg
	}
	return Config{
		Domain:              DomainCustom,
		TemporalPrecision:   "month",
		GeographicPrecision: "county",
	}
}

// NewCustomConfig builds a caller-defined domain configuration.
func NewCustomConfig(eventTypes, outcomes []string, sensitive, preserve []string, temporalPrecision, geographicPrecision string) Config {
	return Config{
		Domain:              DomainCustom,
		EventTypes:          eventTypes,
		Outcomes:            outcomes,
		SensitiveFields:     fieldSet(sensitive...),
		PreserveFields:      fieldSet(preserve...),
		TemporalPrecision:   temporalPrecision,
		GeographicPrecision: geographicPrecision,
	}
}
