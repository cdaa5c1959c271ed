package types

// Word is one word-level timestamp from the transcription step.
// The sequence is read-only after transcription: start <= end, and
// consecutive words are non-decreasing in start (gaps are allowed).
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the spoken length of the word in seconds.
func (w Word) Duration() float64 { return w.End - w.Start }

// Timestamps mirrors whisper's word-level transcription output.
// Only Words is consumed by the planner; the rest is informational.
type Timestamps struct {
	Text     string  `json:"text,omitempty"`
	Words    []Word  `json:"words"`
	Duration float64 `json:"duration,omitempty"`
}

// Main-content types and motion effects assigned by the planner.
const (
	ContentIllustration = "illustration"
	ContentNone         = "none"

	EffectZoomIn     = "zoom_in"
	EffectZoomOut    = "zoom_out"
	EffectZoomCenter = "zoom_center"
	EffectStatic     = "static"
)

// Rect is a pixel-space placement rectangle inside the 1080x1920 frame.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MainContent is the per-scene foreground visual (an illustration).
type MainContent struct {
	Type     string `json:"type"`
	File     string `json:"file,omitempty"`
	Effect   string `json:"effect,omitempty"`
	Position Rect   `json:"position"`
}

// Ticker is the scrolling strip overlay at the bottom of the frame.
type Ticker struct {
	File        string `json:"file"`
	ScrollSpeed int    `json:"scroll_speed"`
	Position    Rect   `json:"position"`
}

// VisualSpec is the full visual treatment for one scene.
type VisualSpec struct {
	Background  string       `json:"background"`
	MainContent *MainContent `json:"main_content,omitempty"`
	Ticker      Ticker       `json:"ticker"`
}

// CaptionStyle controls how the word captions are drawn.
type CaptionStyle struct {
	FontSize      int    `json:"font_size"`
	FontWeight    string `json:"font_weight,omitempty"`
	ActiveColor   string `json:"active_color"`
	InactiveColor string `json:"inactive_color"`
	Background    string `json:"background,omitempty"`
	PositionY     int    `json:"position_y"`
}

// CaptionSpec echoes the scene's own word list so caption timing can
// never drift from scene timing.
type CaptionSpec struct {
	Enabled bool         `json:"enabled"`
	Words   []Word       `json:"words"`
	Style   CaptionStyle `json:"style"`
}

// TransitionSpec bridges consecutive illustration clips.
type TransitionSpec struct {
	Type     string  `json:"type"`
	Duration float64 `json:"duration"`
}

// Scene is a contiguous interval of narration with one visual treatment.
// Scenes are non-overlapping, ordered by Number, and their word lists
// partition the full transcript exactly.
type Scene struct {
	Number     int            `json:"scene_number"`
	Start      float64        `json:"start_time"`
	End        float64        `json:"end_time"`
	Duration   float64        `json:"duration"`
	Text       string         `json:"narration_text"`
	Words      []Word         `json:"words"`
	Visuals    VisualSpec     `json:"visuals"`
	Captions   CaptionSpec    `json:"captions"`
	Transition TransitionSpec `json:"transition"`
}

// VideoMetadata describes the finished video.
type VideoMetadata struct {
	Title           string  `json:"title"`
	DurationSeconds float64 `json:"duration_seconds"`
	Resolution      string  `json:"resolution"`
	FPS             int     `json:"fps"`
}

// AudioTrack is one mixed-in audio source.
type AudioTrack struct {
	File   string  `json:"file"`
	Volume float64 `json:"volume"`
	Loop   bool    `json:"loop,omitempty"`
}

// AudioSpec holds the narration track and the optional music bed.
type AudioSpec struct {
	Narration AudioTrack  `json:"narration"`
	Music     *AudioTrack `json:"music,omitempty"`
}

// AlternatorPosition places the tweet/chart panel.
type AlternatorPosition struct {
	Y         int `json:"y"`
	MaxWidth  int `json:"max_width"`
	MaxHeight int `json:"max_height"`
}

// Alternator is the scene-agnostic layer that swaps between the tweet
// screenshot and the stock chart on a fixed interval.
type Alternator struct {
	Enabled            bool               `json:"enabled"`
	TweetFile          string             `json:"tweet_file"`
	ChartFile          string             `json:"chart_file"`
	Interval           float64            `json:"alternation_interval"`
	TransitionDuration float64            `json:"transition_duration"`
	Position           AlternatorPosition `json:"position"`
}

// GlobalLayers are overlays that span the whole video regardless of
// scene boundaries.
type GlobalLayers struct {
	TweetChartAlternator *Alternator `json:"tweet_chart_alternator,omitempty"`
}

// PlanSchemaVersion is bumped whenever the plan JSON layout changes.
const PlanSchemaVersion = 1

// ProductionPlan is the single serialization contract between the
// planner and the assembler. It must be a complete snapshot: the
// assembler needs nothing beyond this plan and the files it names.
type ProductionPlan struct {
	SchemaVersion int            `json:"schema_version"`
	Metadata      VideoMetadata  `json:"video_metadata"`
	Audio         AudioSpec      `json:"audio"`
	Scenes        []Scene        `json:"scenes"`
	GlobalLayers  GlobalLayers   `json:"global_layers"`
}

// ManifestImage is one generated illustration in the manifest.
type ManifestImage struct {
	ImageID    int    `json:"image_id"`
	ImagePath  string `json:"image_path,omitempty"`
	FilePath   string `json:"file_path,omitempty"`
	Prompt     string `json:"prompt,omitempty"`
	SceneMatch string `json:"scene_match,omitempty"`
}

// Path returns whichever path field the manifest filled in.
func (m ManifestImage) Path() string {
	if m.ImagePath != "" {
		return m.ImagePath
	}
	return m.FilePath
}

// IllustrationManifest lists the generated illustrations for one run.
type IllustrationManifest struct {
	Images     []ManifestImage `json:"images"`
	TotalCount int             `json:"total_count"`
}

// Tweet is a candidate post selected by the research stage.
type Tweet struct {
	ID        string   `json:"id"`
	Author    string   `json:"author"`
	Handle    string   `json:"handle"`
	Text      string   `json:"text"`
	Likes     int      `json:"likes"`
	Reposts   int      `json:"reposts"`
	Replies   int      `json:"replies"`
	Score     int      `json:"score"`
	Source    string   `json:"source"`
	URL       string   `json:"url"`
	PostedAt  string   `json:"posted_at"`
	Tickers   []string `json:"tickers"`
}

// TweetReport is the research stage's output artifact.
type TweetReport struct {
	SelectedTweet Tweet   `json:"selected_tweet"`
	Candidates    []Tweet `json:"candidates,omitempty"`
	SelectedAt    string  `json:"selected_at"`
}

// Analysis is the script stage's output: title plus narration script.
type Analysis struct {
	Title     string   `json:"title"`
	Script    string   `json:"script"`
	Hook      string   `json:"hook,omitempty"`
	Tickers   []string `json:"tickers,omitempty"`
	Sentiment string   `json:"sentiment,omitempty"`
}

// UploadMetadata holds the YouTube upload fields.
type UploadMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"category_id"`
	Visibility  string   `json:"visibility"`
}

// PipelineState tracks the artifacts of one full pipeline run.
type PipelineState struct {
	RunID       string `json:"run_id"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at"`
	TweetReport string `json:"tweet_report,omitempty"`
	Analysis    string `json:"analysis,omitempty"`
	Narration   string `json:"narration,omitempty"`
	Timestamps  string `json:"timestamps,omitempty"`
	PlanFile    string `json:"plan_file,omitempty"`
	VideoFile   string `json:"video_file,omitempty"`
	YouTubeURL  string `json:"youtube_url,omitempty"`
	Error       string `json:"error,omitempty"`
}
