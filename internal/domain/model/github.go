package model

// ReadmeNotFound and ReadmeUnavailable stand in for a profile README that
// does not exist or could not be fetched.
const (
	ReadmeNotFound    = "No README found"
	ReadmeUnavailable = "Could not fetch README"
)

// MaxRepositories caps RepoSummary entries kept per profile.
const MaxRepositories = 15

// GitHubProfile is a per-request snapshot of a user's public profile.
// JSON names follow the GitHub API so prompts read naturally to the model.
type GitHubProfile struct {
	Login           string        `json:"login"`
	Name            string        `json:"name"`
	AvatarURL       string        `json:"avatar_url"`
	Bio             string        `json:"bio"`
	Company         string        `json:"company"`
	Location        string        `json:"location"`
	Followers       int           `json:"followers"`
	Following       int           `json:"following"`
	PublicRepoCount int           `json:"public_repos"`
	Readme          string        `json:"profile_readme"`
	TopRepositories []RepoSummary `json:"last_15_repositories"`
}

// RepoSummary is the slice of repository data used in battles.
type RepoSummary struct {
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	Language       *string `json:"language"`
	StarCount      int     `json:"stargazers_count"`
	OpenIssueCount int     `json:"open_issues_count"`
	IsFork         bool    `json:"fork"`
}
