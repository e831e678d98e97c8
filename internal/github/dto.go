package github

// EventDTO is a single entry from the GitHub events API.
type EventDTO struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Actor     ActorDTO `json:"actor"`
	Repo      RepoDTO  `json:"repo"`
	Org       *OrgDTO  `json:"org,omitempty"`
	CreatedAt string   `json:"created_at"`
}

// ActorDTO identifies the user behind an event.
type ActorDTO struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// RepoDTO identifies the repository an event occurred in.
type RepoDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"` // owner/name
}

// OrgDTO identifies the owning organization, when present.
type OrgDTO struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}
