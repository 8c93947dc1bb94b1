package transfer

// MediaRemoval describes which of a post's current media survive an edit.
// KeepMedia is only consulted when KeepAll is false, so an empty KeepMedia
// drops every existing item.
type MediaRemoval struct {
	KeepAll      bool
	KeepMedia    []string
	DeletedMedia []string
}

type PostUpdate struct {
	Content string
	Removal MediaRemoval
}

type CommentCreation struct {
	Content string `json:"content"`
}
