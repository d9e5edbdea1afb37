package names

import "strings"

// Location is the coarse manuscript zone an image belongs to.
type Location int

const (
	Binding Location = iota
	FrontMatter
	BodyMatter
	EndMatter
	Misc
)

var locationTokens = map[string]Location{
	"binding":     Binding,
	"frontmatter": FrontMatter,
	"endmatter":   EndMatter,
	"misc":        Misc,
}

func (l Location) String() string {
	switch l {
	case Binding:
		return "binding"
	case FrontMatter:
		return "frontmatter"
	case BodyMatter:
		return "bodymatter"
	case EndMatter:
		return "endmatter"
	case Misc:
		return "misc"
	default:
		return "unknown"
	}
}

// Role is the structural role an image plays within its location.
type Role int

const (
	FrontCover Role = iota
	BackCover
	Spine
	Pastedown
	Flyleaf
	Head
	Tail
	ForeEdge
)

var roleTokens = map[string]Role{
	"frontcover": FrontCover,
	"backcover":  BackCover,
	"spine":      Spine,
	"pastedown":  Pastedown,
	"flyleaf":    Flyleaf,
	"head":       Head,
	"tail":       Tail,
	"foreedge":   ForeEdge,
}

func (r Role) String() string {
	for token, role := range roleTokens {
		if role == r {
			return token
		}
	}
	return "unknown"
}

func lookupLocation(token string) (Location, bool) {
	l, ok := locationTokens[strings.ToLower(token)]
	return l, ok
}

func lookupRole(token string) (Role, bool) {
	r, ok := roleTokens[strings.ToLower(token)]
	return r, ok
}
