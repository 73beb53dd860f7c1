package generate

import "strings"

// FidelityClause is appended to every prompt, whatever the style. The
// reference selfies are the source of truth for identity and wardrobe.
const FidelityClause = `[IDENTITY FIDELITY - MANDATORY]
Preserve the EXACT facial features, bone structure, hairstyle, hair color, and skin tone of the person in the reference photos.
Keep the clothing style and level of formality consistent with the reference photos.
Exactly ONE person in the frame - no other people, no crowds, no reflections of other people.
The result must be a photorealistic photograph, not an illustration, painting, or 3D render.
No text, no watermark, no borders.`

// neutralTemplate is the fallback for unknown or absent style keys.
const neutralTemplate = `Create a neutral portrait photograph of the person from the reference photos.
Plain, softly lit background, natural expression, balanced studio lighting.`

// styleTemplates maps style keys to scene templates. Data, not control
// flow: adding a style is a table edit.
var styleTemplates = map[string]string{
	"professional_indoor": `Create a professional indoor portrait of the person from the reference photos.
Modern office interior, soft window light, confident relaxed posture, shallow depth of field.`,

	"professional_outdoor": `Create a professional outdoor portrait of the person from the reference photos.
Blurred city business district backdrop, overcast daylight, polished but approachable look.`,

	"casual_street": `Create a casual street-style portrait of the person from the reference photos.
Urban sidewalk setting, natural daylight, candid relaxed pose, lifestyle photography feel.`,

	"casual_cafe": `Create a casual portrait of the person from the reference photos seated in a cozy café.
Warm ambient light, coffee cup on the table, soft bokeh background, friendly natural expression.`,

	"business_formal": `Create a formal business portrait of the person from the reference photos.
Dark neutral studio backdrop, classic corporate headshot framing, crisp even lighting.`,

	"creative_studio": `Create a creative studio portrait of the person from the reference photos.
Colored gel lighting, bold shadows, editorial composition, contemporary art-direction feel.`,

	"linkedin": `Create a LinkedIn-ready headshot of the person from the reference photos.
Clean light-gray backdrop, head-and-shoulders framing, soft flattering key light, subtle confident smile.`,

	"black_white": `Create a black-and-white portrait of the person from the reference photos.
High-contrast monochrome, dramatic side lighting, timeless classic portrait composition.`,

	"golden_hour": `Create a golden-hour portrait of the person from the reference photos.
Warm low sun backlight, gentle lens flare, glowing skin tones, dreamy outdoor setting.`,

	"urban_night": `Create a night-time urban portrait of the person from the reference photos.
Neon signs and city lights as bokeh, cinematic color grading, moody atmosphere.`,

	"nature": `Create an outdoor nature portrait of the person from the reference photos.
Green foliage background, dappled natural light, fresh organic feel, soft focus behind the subject.`,

	"beach": `Create a beach portrait of the person from the reference photos.
Ocean horizon in the background, bright natural light, breeze in the hair, relaxed vacation mood.`,

	"library": `Create a portrait of the person from the reference photos in a classic library.
Bookshelves softly out of focus, warm reading-lamp light, thoughtful intellectual atmosphere.`,

	"conference": `Create a portrait of the person from the reference photos speaking at a conference.
Stage lighting, blurred audience in the background, confident presenter energy.`,

	"startup_loft": `Create a portrait of the person from the reference photos in a startup loft office.
Exposed brick, whiteboards and plants in soft focus, bright airy daylight, energetic modern vibe.`,

	"vintage": `Create a vintage-style portrait of the person from the reference photos.
Faded film color palette, subtle grain, retro styling of the scene, nostalgic atmosphere.`,

	"minimalist": `Create a minimalist portrait of the person from the reference photos.
Single-color seamless backdrop, negative space, precise composition, quiet elegant mood.`,

	"editorial": `Create a magazine-editorial portrait of the person from the reference photos.
Fashion-magazine lighting and framing, strong pose, premium production quality.`,

	"graduation": `Create a graduation portrait of the person from the reference photos.
Campus architecture in the background, bright proud daylight, celebratory composed pose.`,

	"athletic": `Create an athletic portrait of the person from the reference photos.
Gym or track setting, dynamic directional light, energetic healthy look.`,
}

// BuildPrompt - scene template for the style key plus the fidelity clause.
// Unknown or empty keys fall back to the neutral portrait; there is no
// failure mode.
func BuildPrompt(styleKey string) string {
	template, ok := styleTemplates[strings.TrimSpace(strings.ToLower(styleKey))]
	if !ok {
		template = neutralTemplate
	}
	return template + "\n\n" + FidelityClause
}

// StyleKeys - the enumerated style set, for validation and docs
func StyleKeys() []string {
	keys := make([]string, 0, len(styleTemplates))
	for key := range styleTemplates {
		keys = append(keys, key)
	}
	return keys
}
