// Package kb holds the static plant disease knowledge base consulted when a
// diagnosis names a known condition. The data is fixed at compile time and
// never mutated.
package kb

import "strings"

// Entry describes a single disease: why it occurs, how to avoid it, how to
// treat it, and optional dosage guidance for the treatment.
type Entry struct {
	Why       string
	Avoid     string
	Treatment string
	Dosage    string
}

// entries is keyed by lowercase disease name.
var entries = map[string]Entry{
	"powdery mildew": {
		Why:       "Caused by fungal pathogens thriving in dry, warm days and cool, humid nights; poor air circulation.",
		Avoid:     "Improve airflow, avoid overhead irrigation, prune crowded foliage, rotate crops, and use resistant varieties.",
		Treatment: "Apply sulfur or potassium bicarbonate fungicides; remove infected leaves; maintain spacing and sanitation.",
		Dosage:    "Wettable sulfur 2–3 g/L water for foliar spray; potassium bicarbonate 5–10 g/L. Field: 1–1.5 kg/acre depending on canopy.",
	},
	"downy mildew": {
		Why:       "Oomycete infection favored by cool, wet conditions and prolonged leaf wetness.",
		Avoid:     "Water early so leaves dry quickly, increase spacing, rotate crops, use resistant varieties.",
		Treatment: "Copper-based fungicides at first sign; remove infected tissue; improve drainage and airflow.",
		Dosage:    "Copper oxychloride 2–3 g/L water (200–300 g/100 L). Field: 1–2 kg/acre per spray, 7–10 day interval.",
	},
	"early blight": {
		Why:       "Alternaria fungus; splashes from soil, high humidity, and plant stress.",
		Avoid:     "Mulch to prevent soil splash, rotate crops 2–3 years, avoid overhead watering, fertilize adequately.",
		Treatment: "Copper or chlorothalonil fungicides; remove infected leaves; stake plants to improve airflow.",
		Dosage:    "Chlorothalonil 2 g/L water; Mancozeb 2–2.5 g/L. Field: 1–1.5 kg/acre per application.",
	},
	"late blight": {
		Why:       "Phytophthora infestans; cool, humid weather; spreads rapidly via spores.",
		Avoid:     "Plant certified seed/seedlings, avoid overhead irrigation, destroy volunteers, rotate crops.",
		Treatment: "Immediate removal and destruction of infected plants; protectant fungicides containing mancozeb/cymoxanil where permitted.",
		Dosage:    "Mancozeb 2–2.5 g/L; Cymoxanil + Mancozeb per label (commonly 1.5–2 g/L). Field: 1.5–2 kg/acre.",
	},
	"leaf spot": {
		Why:       "Various fungi/bacteria; splash dispersal and high humidity.",
		Avoid:     "Water at soil level, sanitize tools, remove debris, ensure spacing.",
		Treatment: "Copper sprays for bacterial spots; broad-spectrum fungicide for fungal spots; remove infected leaves.",
		Dosage:    "Copper hydroxide 2 g/L; Captan 2 g/L for fungal spots. Field: ~1 kg/acre per spray.",
	},
	"rust": {
		Why:       "Fungal rusts; spread by wind-borne spores in humid conditions.",
		Avoid:     "Resistant cultivars, remove alternate hosts, avoid wet foliage.",
		Treatment: "Apply triazole or strobilurin fungicides per label; remove infected parts.",
		Dosage:    "Propiconazole 1 ml/L water; Azoxystrobin 0.5 ml/L. Field: 200–300 ml/acre depending on formulation.",
	},
	"anthracnose": {
		Why:       "Colletotrichum fungi causing fruit/leaf lesions; warm, wet weather.",
		Avoid:     "Rotate crops, sanitize debris, improve airflow, avoid overhead watering.",
		Treatment: "Protectant fungicides; prune infected tissue; postharvest sanitation for fruits.",
		Dosage:    "Carbendazim 1 g/L or Azoxystrobin 0.5 ml/L. Field: 200–300 ml or 0.5–1 kg/acre per label.",
	},
	"canker": {
		Why:       "Fungal/bacterial pathogens entering wounds; stress and poor pruning practices.",
		Avoid:     "Prune during dry weather, disinfect tools, avoid injuries, maintain vigor.",
		Treatment: "Prune 10–15 cm below lesions; dispose debris; copper sprays for bacterial cankers.",
		Dosage:    "Copper oxychloride paste on wounds; spray 2–3 g/L after pruning. Field sprays as per label (~1–2 kg/acre).",
	},
	"mosaic virus": {
		Why:       "Viral infection often vectored by aphids/whiteflies; transmitted by tools.",
		Avoid:     "Control vectors, use virus-free seed, sanitize tools, remove weeds hosts.",
		Treatment: "No cure; rogue infected plants; manage vectors; plant resistant varieties.",
		Dosage:    "For vectors: Neem oil 3–5 ml/L or Imidacloprid 0.3 ml/L as per local regulations.",
	},
	"nutrient deficiency": {
		Why:       "Insufficient or imbalanced nutrients (N, P, K, Fe, Mg) and pH issues.",
		Avoid:     "Soil test annually; maintain optimal pH; balanced fertilization; organic matter.",
		Treatment: "Apply specific nutrient amendments per soil test; foliar feeds for rapid correction.",
		Dosage:    "General foliar feed: 1–2 g/L balanced NPK; Fe-EDDHA 0.5–1 g/L for iron chlorosis. Field: follow soil test recommendations.",
	},
	"sunscald": {
		Why:       "High light/heat exposure damaging fruit/leaf tissues.",
		Avoid:     "Provide shade cloth in heat waves; maintain foliage cover; avoid heavy pruning before hot days.",
		Treatment: "Remove damaged tissue if rotting; improve shading and irrigation scheduling.",
		Dosage:    "Apply kaolin clay film 30–50 g/L as protective spray; irrigation 20–30 mm depending on soil moisture.",
	},
}

// keys in a stable presentation order. Map iteration would shuffle the
// candidate label list between runs.
var keys = []string{
	"powdery mildew",
	"downy mildew",
	"early blight",
	"late blight",
	"leaf spot",
	"rust",
	"anthracnose",
	"canker",
	"mosaic virus",
	"nutrient deficiency",
	"sunscald",
}

// Lookup returns the entry for name, matching case-insensitively.
func Lookup(name string) (Entry, bool) {
	e, ok := entries[strings.ToLower(name)]
	return e, ok
}

// Labels returns the candidate label set for zero-shot classification: every
// known disease name plus the two healthy labels.
func Labels() []string {
	labels := make([]string, 0, len(keys)+2)
	labels = append(labels, keys...)
	return append(labels, "healthy leaf", "healthy fruit")
}
