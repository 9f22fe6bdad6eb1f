package types

// Reaction types reported by the Graph API breakdown.
const (
	ReactionLike  = "like"
	ReactionLove  = "love"
	ReactionHaha  = "haha"
	ReactionWow   = "wow"
	ReactionSad   = "sad"
	ReactionAngry = "angry"
)

// ReactionTypes lists all reaction types in breakdown order.
var ReactionTypes = []string{
	ReactionLike,
	ReactionLove,
	ReactionHaha,
	ReactionWow,
	ReactionSad,
	ReactionAngry,
}

// ReactionCount is one reaction-type count for a post on a given day.
// These detail rows are the source for the reactions total on the
// corresponding DailyMetrics row.
type ReactionCount struct {
	Platform     string
	PageID       string
	PostID       string
	DownloadDate string
	ReactionType string
	Count        int64
}
