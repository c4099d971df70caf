// File: internal/langid/classifier.go

// Package langid decides whether a piece of OCR'd UI text is rendered in the
// wrong language. Classification is binary: the text is either in the target
// language (or indeterminate), or it leaked through from the comparison
// language and counts as a missing translation.
package langid

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/mkaresz/locascope/internal/config"
)

// Verdict is the outcome of classifying one text block.
type Verdict struct {
	// MissingTranslation is true when the text was confidently identified as
	// the comparison language.
	MissingTranslation bool
	// Language is the resolved ISO 639-1 code, or "" when the classifier
	// could not commit to either language.
	Language string
}

// Classifier is a deterministic two-language text classifier. The underlying
// detector is constrained to exactly the target and comparison languages and
// is purely statistical, so repeated runs over the same input always produce
// the same verdicts.
type Classifier struct {
	logger *zap.Logger

	target     lingua.Language
	compare    lingua.Language
	targetISO  string
	compareISO string

	minTextLength int
	minConfidence float64
	allowed       map[string]struct{}

	detector lingua.LanguageDetector
}

// New builds a Classifier from configuration. The allow list is the built-in
// vocabulary for the target language merged with any configured terms.
func New(cfg config.ClassifierConfig, logger *zap.Logger) (*Classifier, error) {
	targetISO, target, err := resolveLanguage(cfg.TargetLanguage)
	if err != nil {
		return nil, fmt.Errorf("target language: %w", err)
	}
	compareISO, compare, err := resolveLanguage(cfg.CompareLanguage)
	if err != nil {
		return nil, fmt.Errorf("compare language: %w", err)
	}
	if target == compare {
		return nil, fmt.Errorf("target and compare languages are both %q", targetISO)
	}

	allowed := defaultTerms(targetISO)
	for _, term := range cfg.AllowedTerms {
		allowed[strings.ToLower(strings.TrimSpace(term))] = struct{}{}
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(target, compare).
		WithPreloadedLanguageModels().
		Build()

	logger = logger.Named("classifier")
	logger.Info("Text classifier initialized",
		zap.String("target", targetISO),
		zap.String("compare", compareISO),
		zap.Int("allowed_terms", len(allowed)),
	)

	return &Classifier{
		logger:        logger,
		target:        target,
		compare:       compare,
		targetISO:     targetISO,
		compareISO:    compareISO,
		minTextLength: cfg.MinTextLength,
		minConfidence: cfg.MinConfidence,
		allowed:       allowed,
		detector:      detector,
	}, nil
}

// Classify decides whether the text is a missing translation.
//
// Short strings and allow-listed terms short-circuit before the detector
// runs: UI fragments like "OK" carry no usable language signal, and industry
// vocabulary is legitimate in either language. For everything else the
// constrained detector picks a language; when it cannot commit, per-language
// confidence values break the tie, and anything below the configured floor is
// treated as indeterminate rather than flagged.
func (c *Classifier) Classify(text string) Verdict {
	normalized := strings.ToLower(strings.TrimSpace(text))

	if utf8.RuneCountInString(normalized) < c.minTextLength {
		return Verdict{}
	}
	if _, ok := c.allowed[normalized]; ok {
		// Allow-listed terms count as the target language no matter what the
		// detector would say.
		return Verdict{MissingTranslation: false, Language: c.targetISO}
	}

	if detected, ok := c.detector.DetectLanguageOf(normalized); ok {
		switch detected {
		case c.target:
			return Verdict{MissingTranslation: false, Language: c.targetISO}
		case c.compare:
			c.logger.Debug("Foreign language text detected",
				zap.String("text", text),
				zap.String("language", c.compareISO),
			)
			return Verdict{MissingTranslation: true, Language: c.compareISO}
		}
	}

	// The detector could not commit to one language. Fall back to the
	// per-language confidence values, which only count once they clear the
	// configured floor.
	for _, cv := range c.detector.ComputeLanguageConfidenceValues(normalized) {
		if cv.Value() < c.minConfidence {
			break
		}
		switch cv.Language() {
		case c.target:
			return Verdict{MissingTranslation: false, Language: c.targetISO}
		case c.compare:
			c.logger.Debug("Foreign language text detected via confidence fallback",
				zap.String("text", text),
				zap.String("language", c.compareISO),
				zap.Float64("confidence", cv.Value()),
			)
			return Verdict{MissingTranslation: true, Language: c.compareISO}
		}
	}

	// No letters, or equally plausible in both languages.
	return Verdict{}
}

// TargetLanguage returns the ISO 639-1 code of the configured target.
func (c *Classifier) TargetLanguage() string { return c.targetISO }

// resolveLanguage canonicalizes an ISO code (BCP 47 parsing handles variants
// like "fr-FR") and maps it to a detector language.
func resolveLanguage(code string) (string, lingua.Language, error) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "", lingua.Unknown, fmt.Errorf("unrecognized language code %q: %w", code, err)
	}
	base, _ := tag.Base()
	iso := base.String()

	for _, candidate := range lingua.AllLanguages() {
		if strings.EqualFold(candidate.IsoCode639_1().String(), iso) {
			return iso, candidate, nil
		}
	}
	return "", lingua.Unknown, fmt.Errorf("language %q is not supported by the detector", iso)
}
