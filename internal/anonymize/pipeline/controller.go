// Package pipeline runs the end-to-end anonymization flow: validate input,
// group people, build personas, add noise, score risk, and iterate privacy
// adjustments until the target risk is met or the iteration budget runs out.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"personaforge/internal/anonymize/advisor"
	"personaforge/internal/anonymize/domains"
	"personaforge/internal/anonymize/events"
	"personaforge/internal/anonymize/grouping"
	"personaforge/internal/anonymize/models"
	"personaforge/internal/anonymize/noise"
	"personaforge/internal/anonymize/personas"
	"personaforge/internal/anonymize/risk"
)

const (
	defaultTargetRisk    = 0.05
	defaultMaxIterations = 5
	defaultMinKAnonymity = 5

	// noiseLevelIncrement tracks each noise pass in persona metadata.
	noiseLevelIncrement = 0.2
	// syntheticNoiseIncrement tracks synthetic event injection.
	syntheticNoiseIncrement = 0.3

	// generalization applied by the demographics action.
	generalizedAgeBin = 10
	confidenceDecay   = 0.8
)

// Config controls a processing run. Zero values fall back to medium
// privacy, a 5% target risk, and five adjustment iterations.
type Config struct {
	PrivacyLevel         models.PrivacyLevel
	TargetPopulationRisk float64
	Domain               domains.Domain
	DomainConfig         *domains.Config
	MergeStrategy        events.Strategy
	MaxIterations        int
	MinKAnonymity        int

	// Advisor proposes synthetic events during adjustment. Optional.
	Advisor advisor.Advisor
	// Census refines external-linkage scoring. Optional.
	Census risk.CensusProvider
	// Rand seeds the noise engine; nil means time-seeded.
	Rand *rand.Rand
}

func (c Config) withDefaults() Config {
	if c.PrivacyLevel == "" {
		c.PrivacyLevel = models.PrivacyMedium
	}
	if c.TargetPopulationRisk == 0 {
		c.TargetPopulationRisk = defaultTargetRisk
	}
	if c.Domain == "" {
		c.Domain = domains.DomainCustom
	}
	if c.MergeStrategy == "" {
		c.MergeStrategy = events.StrategySimilarity
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = defaultMaxIterations
	}
	if c.MinKAnonymity == 0 {
		c.MinKAnonymity = defaultMinKAnonymity
	}
	return c
}

// Result is the outcome of a processing run.
type Result struct {
	Personas    []models.Persona
	RiskMetrics risk.Metrics
	Iterations  int
	Success     bool
	Message     string
}

// SafeForPublic reports whether the output meets public release standards.
func (r Result) SafeForPublic() bool {
	return r.RiskMetrics.RiskLevel() == risk.LevelSafeForPublicRelease
}

// SafeForResearch reports whether the output is usable for research.
func (r Result) SafeForResearch() bool {
	level := r.RiskMetrics.RiskLevel()
	return level == risk.LevelSafeForPublicRelease || level == risk.LevelSafeForResearch
}

// Controller wires the anonymization stages together.
type Controller struct {
	cfg       Config
	domainCfg domains.Config
	grouper   *grouping.Grouper
	builder   *personas.Builder
	engine    *noise.Engine
	scorer    *risk.Scorer
	logger    *slog.Logger
}

// NewController builds a controller for the configured domain and privacy
// level.
func NewController(cfg Config, logger *slog.Logger) *Controller {
	cfg = cfg.withDefaults()
	domainCfg := domains.ConfigFor(cfg.Domain)
	if cfg.DomainConfig != nil {
		domainCfg = *cfg.DomainConfig
	}

	grouper := grouping.New(grouping.CriteriaFor(cfg.PrivacyLevel))
	grouper.SetMinimumGroupSize(cfg.MinKAnonymity)

	return &Controller{
		cfg:       cfg,
		domainCfg: domainCfg,
		grouper:   grouper,
		builder:   personas.NewBuilder(cfg.Domain, cfg.MergeStrategy),
		engine:    noise.NewEngine(noise.ConfigFor(cfg.PrivacyLevel), cfg.Rand),
		scorer:    risk.NewScorer(cfg.PrivacyLevel, cfg.Census),
		logger:    logger,
	}
}

// Process turns raw people into privacy-protected personas. It never fails:
// empty or fully invalid input yields a zero-persona result with
// Success=false.
func (c *Controller) Process(ctx context.Context, people []models.Person) Result {
	if len(people) == 0 {
		return Result{Message: "No input data provided"}
	}

	validated := c.validate(people)
	if len(validated) == 0 {
		return Result{Message: "No input data provided"}
	}

	c.logger.Info("processing dataset",
		"people", len(validated),
		"domain", c.domainCfg.Domain,
		"privacy_level", c.cfg.PrivacyLevel,
		"target_risk", c.cfg.TargetPopulationRisk,
	)

	generated := c.buildPersonas(validated)
	generated = c.addNoise(generated)
	metrics := c.scorer.Score(ctx, generated)
	c.logger.Info("initial assessment",
		"personas", len(generated),
		"population_risk", metrics.PopulationAverageRisk,
	)

	target := c.cfg.TargetPopulationRisk
	iteration := 0
	for metrics.PopulationAverageRisk > target && iteration < c.cfg.MaxIterations {
		iteration++
		actions := risk.DeriveActions(metrics, target)
		generated = c.applyActions(ctx, generated, actions)
		metrics = c.scorer.Score(ctx, generated)
		c.logger.Info("privacy adjustment",
			"iteration", iteration,
			"population_risk", metrics.PopulationAverageRisk,
		)
	}

	success := metrics.PopulationAverageRisk <= target
	message := fmt.Sprintf("Successfully generated %d personas with %s risk level",
		len(generated), metrics.RiskLevel())
	if !success {
		message = fmt.Sprintf("Generated %d personas but target risk not achieved. Current: %.3f, Target: %.3f",
			len(generated), metrics.PopulationAverageRisk, target)
	}

	return Result{
		Personas:    generated,
		RiskMetrics: metrics,
		Iterations:  iteration,
		Success:     success,
		Message:     message,
	}
}

// validate drops people without IDs and filters events the domain
// vocabulary rejects.
func (c *Controller) validate(people []models.Person) []models.Person {
	validated := make([]models.Person, 0, len(people))
	for _, person := range people {
		if person.PersonID == "" {
			c.logger.Warn("skipping person with no ID")
			continue
		}
		if len(c.domainCfg.EventTypes) > 0 {
			kept := make([]models.Event, 0, len(person.Events))
			for _, event := range person.Events {
				if c.domainCfg.IsValidEventType(event.EventType) {
					kept = append(kept, event)
				}
			}
			if dropped := len(person.Events) - len(kept); dropped > 0 {
				c.logger.Warn("filtered invalid events",
					"person_id", person.PersonID, "dropped", dropped)
			}
			person.Events = kept
		}
		validated = append(validated, person)
	}
	return validated
}

func (c *Controller) buildPersonas(people []models.Person) []models.Persona {
	groups := c.grouper.Group(people)
	built := make([]models.Persona, 0, len(groups))
	for _, group := range groups {
		built = append(built, c.builder.Build(group))
	}
	return built
}

// addNoise runs temporal, outcome, and precision noise over every persona's
// events and bumps the recorded noise level.
func (c *Controller) addNoise(generated []models.Persona) []models.Persona {
	for i := range generated {
		noised := c.engine.Apply(generated[i].Events, c.domainCfg.Outcomes)
		noised = c.engine.GeneralizeTemporalPrecision(noised, c.domainCfg.TemporalPrecision)
		generated[i].Events = noised
		generated[i].PrivacyMetadata.NoiseLevel += noiseLevelIncrement
	}
	return generated
}

func (c *Controller) applyActions(ctx context.Context, generated []models.Persona, actions risk.Actions) []models.Persona {
	if actions.IncreaseMerging {
		c.logger.Info("increasing merge size", "size", actions.RecommendedMergeSize)
		people := personasToPeople(generated)
		c.grouper.SetMinimumGroupSize(actions.RecommendedMergeSize)
		generated = c.buildPersonas(people)
	}
	if actions.IncreaseTemporalNoise {
		c.logger.Info("adding temporal noise")
		generated = c.addNoise(generated)
	}
	if actions.GeneralizeDemographics {
		c.logger.Info("generalizing demographics")
		generated = generalizeDemographics(generated)
	}
	if actions.AddSyntheticEvents && c.cfg.Advisor != nil {
		c.logger.Info("adding synthetic events")
		generated = c.addSyntheticEvents(ctx, generated)
	}
	return generated
}

// personasToPeople converts personas back into pseudo-people so they can be
// re-grouped under stricter criteria. Events and demographics are copied to
// keep iterations independent.
func personasToPeople(generated []models.Persona) []models.Person {
	people := make([]models.Person, 0, len(generated))
	for _, p := range generated {
		people = append(people, models.Person{
			PersonID:     p.PersonaID,
			Demographics: p.Demographics.Clone(),
			Events:       models.CloneEvents(p.Events),
		})
	}
	return people
}

// generalizeDemographics widens ages into ranges, coarsens geography by one
// level, and decays confidence.
func generalizeDemographics(generated []models.Persona) []models.Persona {
	for i := range generated {
		demo := &generated[i].Demographics
		if demo.Age != nil && demo.AgeRange == "" {
			demo.AgeRange = demo.GeneralizeAge(generalizedAgeBin)
			demo.Age = nil
		}
		if strings.Contains(demo.Geography, ",") {
			parts := strings.Split(demo.Geography, ",")
			if len(parts) > 1 {
				demo.Geography = strings.TrimSpace(parts[len(parts)-2])
			}
		}
		demo.ConfidenceLevel *= confidenceDecay
	}
	return generated
}

// addSyntheticEvents asks the advisor for plausible cover events per
// persona. Advisor failures skip that persona.
func (c *Controller) addSyntheticEvents(ctx context.Context, generated []models.Persona) []models.Persona {
	for i := range generated {
		p := &generated[i]
		geography := p.Demographics.Geography
		if geography == "" {
			geography = "Unknown"
		}
		synthetic, err := c.cfg.Advisor.GenerateEvents(ctx, p.Demographics, p.Events, geography, p.PrivacyMetadata.NoiseLevel)
		if err != nil {
			c.logger.Warn("synthetic event generation failed",
				"persona_id", p.PersonaID, "error", err)
			continue
		}
		if len(synthetic) > 0 {
			p.Events = append(p.Events, synthetic...)
			p.PrivacyMetadata.NoiseLevel += syntheticNoiseIncrement
		}
	}
	return generated
}
