package diagnosis

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/plantai/plantai/kb"
)

// DosageMarker separates general treatment advice from dosage guidance inside
// Result.Treatment. The web UI splits on this exact string, so it must stay
// byte-for-byte stable.
const DosageMarker = "Recommended dosage:"

// FallbackConfidence is carried by the terminal result when every strategy
// has failed.
const FallbackConfidence = 0.10

var titler = cases.Title(language.English)

// FromCaption wraps a free-text model caption in the uniform result shape.
func FromCaption(caption string, confidence float64) Result {
	return Result{
		DiseaseName: "AI Analysis",
		Confidence:  confidence,
		Description: fmt.Sprintf("The AI model provided the following description: '%s'", caption),
		Treatment: "Based on the description, please consult an agronomist for a specific treatment plan. " +
			"This model provides a general analysis, not a detailed diagnosis.",
	}
}

// FromKnowledge builds a result for a known disease. Dosage guidance, when the
// entry defines it, is appended to the treatment behind DosageMarker.
func FromKnowledge(name string, confidence float64, e kb.Entry) Result {
	treatment := e.Treatment
	if e.Dosage != "" {
		treatment = fmt.Sprintf("%s\n\n%s %s", treatment, DosageMarker, e.Dosage)
	}
	return Result{
		DiseaseName: titler.String(name),
		Confidence:  confidence,
		Description: fmt.Sprintf("Why it occurs: %s\n\nHow to avoid: %s", e.Why, e.Avoid),
		Treatment:   treatment,
	}
}

// Healthy is the result for an image with no disease indicators.
func Healthy(confidence float64) Result {
	return FromKnowledge("Healthy", confidence, kb.Entry{
		Why:       "No disease indicators detected.",
		Avoid:     "Maintain current care; monitor regularly.",
		Treatment: "No action needed.",
	})
}

// FromLabel maps the winning zero-shot label onto a result. A KB hit yields a
// knowledge response, a "healthy"-flavored label yields Healthy, and anything
// else degrades to a generic possible-condition caption at the matcher's own
// score.
func FromLabel(label string, score float64) Result {
	key := strings.ToLower(label)
	if e, ok := kb.Lookup(key); ok {
		return FromKnowledge(key, score, e)
	}
	if strings.Contains(key, "healthy") {
		return Healthy(score)
	}
	return FromCaption("Possible condition: "+key, score)
}

// Fallback is the terminal low-confidence result returned when every
// captioning strategy failed. lastErr is the most recent recorded failure
// detail, if any.
func Fallback(lastErr string) Result {
	if lastErr == "" {
		lastErr = "unknown error"
	}
	return Result{
		DiseaseName: "AI Analysis (Fallback)",
		Confidence:  FallbackConfidence,
		Description: "The captioning service is unavailable (" + lastErr + "). " +
			"Your image was received, but we could not generate a description right now.",
		Treatment: "Please try again later. If the issue persists, verify your HUGGING_FACE_TOKEN and network connectivity, " +
			"or keep local mode enabled.",
	}
}
