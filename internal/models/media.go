package models

// Media describes the user-chosen video file. The bytes live behind a preview locator.
type Media struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}
