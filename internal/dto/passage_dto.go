package dto

type IngestPassageRequest struct {
	Locale      string `json:"locale" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	HeadingPath string `json:"heading_path,omitempty"`
	BasePath    string `json:"base_path" validate:"required"`
	ExactPath   string `json:"exact_path" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

// IngestPassageMessage is the watermill queue payload for one passage.
type IngestPassageMessage struct {
	Passage IngestPassageRequest `json:"passage"`
}

type IngestPassageResponse struct {
	Queued int `json:"queued"`
}

type PassageResponse struct {
	Id        string `json:"id"`
	Digest    string `json:"digest"`
	Locale    string `json:"locale"`
	Title     string `json:"title"`
	ExactPath string `json:"exact_path"`
}
