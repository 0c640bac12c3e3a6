package promptgen

import "fmt"

// Sampling settings for each kind of request.
const (
	PromptListMaxTokens   = 2000
	PromptListTemperature = 0.9

	MetadataMaxTokens   = 400
	MetadataTemperature = 0.7

	SingleMaxTokens   = 200
	SingleTemperature = 0.8
)

const sceneChecklist = `For each of the 9 prompts, describe a specific scene that includes:
- A clear setting and time of day
- What happens moment by moment
- How the camera moves (tracking, overhead, slow pan, zoom-in)
- Vivid visual details (weather, lighting, textures, colors)
- Any expressions, actions, or key visual surprises

IMPORTANT: Return ONLY a valid JSON array. Do not include markdown, code blocks, or any other text. Your response must start with [ and end with ].`

// PromptListInstruction is the system message asking for nine variations.
// When meta is non-nil the variations are tied to that project brief.
func PromptListInstruction(meta *ProjectMetadata) string {
	if meta != nil {
		return fmt.Sprintf(`You are an expert ASMR video creator and cinematographer working on a project called %q.

PROJECT CONTEXT:
Description: %s
Creative Direction: %s

Using this context and the user's specific input, create 9 detailed, sensory-rich ASMR video prompts for a video generation model. Each prompt must stay cohesive with the project while varying the setting, camera work, atmosphere and mood.

%s

Format:
[
  {
    "title": "Morning Rain Contemplation",
    "description": "A warm, dimly lit cabin bedroom at dawn. The camera slowly pans across rain-streaked windows as soft light filters through. Steam rises from a mug on the windowsill."
  }
]

Return only the JSON array.`, meta.Title, meta.Description, meta.Theme, sceneChecklist)
	}

	return `You are an expert ASMR video creator and cinematographer. Given a general idea, create 9 detailed, sensory-rich ASMR video prompts for a video generation model. Each prompt is a different interpretation of the idea with its own setting, camera work, atmosphere and mood.

` + sceneChecklist + `

Format:
[
  {
    "title": "Cozy Rain Cabin",
    "description": "A dimly lit log cabin during a gentle rainstorm. The camera slowly pans across wet windows while golden lamplight flickers over blankets and steaming tea."
  }
]

Return only the JSON array.`
}

// MetadataInstruction asks for a single {title, description, theme} object.
func MetadataInstruction() string {
	return `You are a creative director for ASMR content. Given a user's idea, write project metadata that will guide several related ASMR video prompts.

Produce:
1. A short professional project title (2-4 words)
2. A project description that sets the emotional tone
3. A theme giving concrete creative direction for every prompt in the project

Return ONLY a valid JSON object in exactly this shape:

{
  "title": "Cozy Cabin Retreat",
  "description": "An intimate collection of peaceful cabin moments centered on rain, warmth and solitude.",
  "theme": "Focus on sensory details of cabin life: rain patterns, warm light, soft textures, steam from hot drinks and quiet moments."
}`
}

// SingleInstruction asks for one rewritten prompt as plain text.
func SingleInstruction() string {
	return `You are an expert ASMR video creator and cinematographer. Rewrite the user's idea as one detailed, cinematic, sensory-rich prompt for a video generation model. Describe the setting, camera movement, lighting, textures and sounds. Reply with the prompt text only.`
}
