package guild

// Resource names a guild resource balance.
type Resource string

const (
	ResourceGold          Resource = "gold"
	ResourceSupplies      Resource = "supplies"
	ResourceMagicEssence  Resource = "magic_essence"
	ResourceReputation    Resource = "reputation"
	ResourceRareArtifacts Resource = "rare_artifacts"
)

// Guild holds resource balances, reputation, and unlocked facilities/areas.
type Guild struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Resources  map[Resource]int `json:"resources"`
	Reputation int              `json:"reputation"`
	Facilities []string         `json:"facilities,omitempty"`
	Areas      []string         `json:"areas,omitempty"`
}

// AddResource credits a resource balance.
func (g *Guild) AddResource(r Resource, amount int) {
	if g.Resources == nil {
		g.Resources = map[Resource]int{}
	}
	g.Resources[r] += amount
}

// UnlockFacility records a facility unlock, once.
func (g *Guild) UnlockFacility(name string) {
	for _, f := range g.Facilities {
		if f == name {
			return
		}
	}
	g.Facilities = append(g.Facilities, name)
}

// UnlockArea records an area unlock, once.
func (g *Guild) UnlockArea(name string) {
	for _, a := range g.Areas {
		if a == name {
			return
		}
	}
	g.Areas = append(g.Areas, name)
}
