package domain

// Platform identifies one of the content platforms a Golike account belongs to.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformThreads   Platform = "threads"
)

// Platforms lists every supported platform in stable order.
var Platforms = []Platform{PlatformInstagram, PlatformThreads}

// Account is an eligible (active, not banned) linked account as reported by the
// job provider. Eligibility is decided by the provider and not re-validated here.
type Account struct {
	ID       int64
	Platform Platform
	Name     string
}

// PlatformConfig is the set of platforms a session is allowed to run workers on.
// It may only be mutated while the session is stopped.
type PlatformConfig struct {
	Instagram bool
	Threads   bool
}

// Enabled reports whether the given platform is switched on.
func (c PlatformConfig) Enabled(p Platform) bool {
	switch p {
	case PlatformInstagram:
		return c.Instagram
	case PlatformThreads:
		return c.Threads
	default:
		return false
	}
}

// Any reports whether at least one platform is enabled.
func (c PlatformConfig) Any() bool {
	return c.Instagram || c.Threads
}

// Toggled returns a copy with the given platform flipped.
func (c PlatformConfig) Toggled(p Platform) PlatformConfig {
	switch p {
	case PlatformInstagram:
		c.Instagram = !c.Instagram
	case PlatformThreads:
		c.Threads = !c.Threads
	}
	return c
}

// DefaultPlatformConfig enables every platform, matching the behaviour for a
// user who has never touched the config menu.
func DefaultPlatformConfig() PlatformConfig {
	return PlatformConfig{Instagram: true, Threads: true}
}
