package ledger

// Scope restricts a ledger query to a single repository, a single
// organization, or the combined ecosystem. The zero value is the combined
// scope: every tracked repository, with user identity merged globally.
type Scope struct {
	Repo string
	Org  string
}

// Combined returns the ecosystem-wide scope.
func Combined() Scope { return Scope{} }

// RepoScope returns a scope restricted to one repository (owner/name).
func RepoScope(repo string) Scope { return Scope{Repo: repo} }

// OrgScope returns a scope restricted to one organization.
func OrgScope(org string) Scope { return Scope{Org: org} }

// IsCombined reports whether the scope spans the whole tracked ecosystem.
func (s Scope) IsCombined() bool { return s.Repo == "" && s.Org == "" }

// Key returns a stable string form of the scope, used in cache keys and logs.
func (s Scope) Key() string {
	switch {
	case s.Repo != "":
		return "repo:" + s.Repo
	case s.Org != "":
		return "org:" + s.Org
	default:
		return "combined"
	}
}

// Matches reports whether an event falls inside the scope.
func (s Scope) Matches(e Event) bool {
	switch {
	case s.Repo != "":
		return e.Repo == s.Repo
	case s.Org != "":
		return e.Org == s.Org
	default:
		return true
	}
}
