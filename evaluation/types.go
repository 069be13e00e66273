package evaluation

import "context"

// Result is a successful evaluation of one image.
type Result struct {
	// OriginalImagePath is the absolute path the image was evaluated at.
	OriginalImagePath string `json:"originalImagePath"`
	BriefDescription  string `json:"briefDescription"`
	// NewSuggestedFilepathSuffix is appended to the file stem on export.
	NewSuggestedFilepathSuffix *string `json:"newSuggestedFilepathSuffix,omitempty"`
}

// Record is the ledger entry of one image. Exactly one of Result and
// FailReason is normally set.
type Record struct {
	ImageName  string  `json:"imageName"`
	Result     *Result `json:"result"`
	FailReason *string `json:"failReason"`
}

// Succeeded reports whether the record holds a successful result.
func (r Record) Succeeded() bool {
	return r.Result != nil
}

// Request asks for a set of project images to be evaluated.
type Request struct {
	ImageNames []string `json:"imageNames"`
	APIKey     string   `json:"openaiApiKey"`
}

// ClientResult is the outcome for one path returned by a Client.
type ClientResult struct {
	FullImagePath string
	Success       *Result
	Failure       *string
}

// Client evaluates image files. Results are keyed by path and need not
// follow the input order.
type Client interface {
	SetCredentials(apiKey string)
	Evaluate(ctx context.Context, paths []string) ([]ClientResult, error)
}

// Tree lists the relative names of the images currently in a project.
// *imagecache.Manager implements it.
type Tree interface {
	ImageNames(ctx context.Context, project string) ([]string, error)
}
