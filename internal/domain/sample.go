package domain

import "time"

// ReferenceNote is a human-authored fact-check note used as the scoring
// target for one sample.
type ReferenceNote struct {
	// IsMisleading is the human verdict on the video content.
	IsMisleading bool `json:"is_misleading"`

	// Summary is the free-text note explaining the verdict.
	Summary string `json:"summary"`

	// MisleadingTags lists the category tags the note author selected.
	MisleadingTags []string `json:"misleading_tags"`
}

// Post carries the originating social-media post's context, forwarded to
// backends alongside the video.
type Post struct {
	// Text is the post body.
	Text string `json:"text"`

	// AuthorName is the display name of the post author.
	AuthorName string `json:"author_name"`

	// AuthorUsername is the handle of the post author, when known.
	AuthorUsername string `json:"author_username,omitempty"`

	// CreatedAt is the post timestamp, when known.
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Sample is one unit of evaluation: a video, the post it appeared in, and the
// human reference notes written about it. Samples are immutable once loaded.
type Sample struct {
	// ID uniquely identifies the sample within the dataset.
	ID string `json:"sample_id"`

	// VideoPath is the local path of the downloaded video file.
	VideoPath string `json:"video_path"`

	// Post is the originating post context.
	Post Post `json:"post"`

	// References holds the human-authored notes for this sample. The first
	// entry is the primary scoring target when several exist.
	References []ReferenceNote `json:"reference_notes"`
}

// PrimaryReference returns the scoring target for this sample: the first
// reference note. It returns ErrNoReferenceNote for samples with none; such
// samples are skipped by the orchestrator, not scored.
func (s *Sample) PrimaryReference() (ReferenceNote, error) {
	if len(s.References) == 0 {
		return ReferenceNote{}, ErrNoReferenceNote
	}
	return s.References[0], nil
}

// Dataset is the loaded collection of samples plus its provenance.
type Dataset struct {
	// Name is a human-readable dataset label.
	Name string `json:"name,omitempty"`

	// CreatedAt records when the dataset file was generated.
	CreatedAt *time.Time `json:"created_at,omitempty"`

	// Samples are the evaluation units in file order.
	Samples []Sample `json:"samples"`
}
