package ledger

// passiveKinds are low-effort or administrative signals that never count
// toward engagement.
var passiveKinds = map[Kind]bool{
	KindWatch:  true,
	KindMember: true,
	KindPublic: true,
}

// ActorDirectory is a snapshot of per-actor classification taken once per
// run. The underlying flags are maintained externally and may be edited at
// any time, so computations must never read them mid-run; they tag events
// through a directory captured up front.
type ActorDirectory struct {
	bots map[string]bool
	core map[string]bool
}

// NewActorDirectory builds a directory from explicit bot and core logins.
func NewActorDirectory(bots, core []string) *ActorDirectory {
	d := &ActorDirectory{
		bots: make(map[string]bool, len(bots)),
		core: make(map[string]bool, len(core)),
	}
	for _, b := range bots {
		d.bots[b] = true
	}
	for _, c := range core {
		d.core[c] = true
	}
	return d
}

// IsBot reports whether the login belongs to an automation account.
func (d *ActorDirectory) IsBot(login string) bool {
	if d == nil {
		return false
	}
	return d.bots[login]
}

// IsCore reports whether the login belongs to the maintaining team.
func (d *ActorDirectory) IsCore(login string) bool {
	if d == nil {
		return false
	}
	return d.core[login]
}

// Qualifies is the PMF eligibility predicate: bots, core-team actors and
// passive event kinds are excluded; everything else counts.
func Qualifies(e Event) bool {
	if e.ActorIsBot || e.ActorIsCore {
		return false
	}
	return !passiveKinds[e.Kind]
}

// Tag stamps the actor flags and the eligibility decision onto an event.
// Called once at ingestion; readers consume the cached Qualifies flag.
func Tag(e Event, dir *ActorDirectory) Event {
	e.ActorIsBot = dir.IsBot(e.UserID)
	e.ActorIsCore = dir.IsCore(e.UserID)
	e.Qualifies = Qualifies(e)
	return e
}
