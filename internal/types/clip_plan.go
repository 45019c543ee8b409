package types

var ClipPlanSystemPrompt = "You are a helpful assistant designed to output JSON."

// ClipPlanPrompt args: title, subtitles, script, clip count, title.
var ClipPlanPrompt = `You are given TWO inputs.
Movie: %s

INPUT A (Subtitles with timestamps in SECONDS):
%s

INPUT B (Optional script text WITHOUT timestamps; may be empty):
%s

TASK:
- Choose %d non-overlapping time ranges that best cover the full plot arc.
- ONLY use INPUT A for selecting start/end times (seconds). INPUT B is for story context.
- Each time range should usually be 8-16 seconds long (end-start). Avoid >20 seconds.
- Keep narrations punchy but not tiny: about 20-35 words total, in 3-5 short sentences.
- Prefer ranges with clear visual action (reveals, confrontations, entrances, big moments).
- Skip any range that starts at 0.
- Return STRICT JSON with this shape ONLY:
  {"clips":[{"start":120,"end":145,"narration":"..."}, ...]}
- Clips must be increasing by start time.
- Each narration must be at least 3 full sentences, casual commentator vibe.
- The first narration must start with: "Here we go, let's go over the movie %s.".
`
