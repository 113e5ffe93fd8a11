package mission

import (
	"fmt"
	"math/rand"
)

// Content pools for randomized missions. The literal vocabulary is
// replaceable; generation logic only cares about pool sizes.
var (
	nameAdjectives = []string{"Dangerous", "Mysterious", "Urgent", "Secret", "Ancient", "Dark", "Lost", "Hidden", "Cursed"}
	nameNouns      = []string{"Quest", "Mission", "Task", "Journey", "Expedition", "Adventure", "Assignment", "Operation"}

	descriptionPool = []string{
		"A perilous journey awaits those brave enough to accept this mission.",
		"This mission requires skill and cunning to complete successfully.",
		"Only the most experienced adventurers should attempt this dangerous task.",
		"A simple mission that should pose no significant challenges.",
		"A mysterious client has requested this mission be completed with utmost discretion.",
	}

	tagVocabulary = []string{"combat", "exploration", "stealth", "rescue", "collection", "boss", "timed"}

	enemyPool    = []string{"Goblins", "Skeletons", "Rats", "Spiders", "Bandits"}
	itemPool     = []string{"Gems", "Herbs", "Scrolls", "Artifacts", "Supplies"}
	areaPool     = []string{"Crypt", "Cave", "Forest", "Ruins", "Dungeon"}
	bossPool     = []string{"Goblin King", "Necromancer", "Dragon", "Demon Lord", "Ancient Golem"}
	npcPool      = []string{"Merchant", "Scholar", "Noble", "Child", "Prisoner"}
	artifactPool = []string{"Ancient Sword", "Magic Orb", "Lost Crown", "Sacred Relic", "Enchanted Gem"}
	placePool    = []string{"Ancient Altar", "Hidden Chamber", "Mountain Peak", "Underground Lake", "Portal"}
	customPool   = []string{"Investigate strange noises", "Recover lost supplies", "Map the area", "Find missing scouts", "Disable traps"}

	facilityPool   = []string{"Training Hall", "Library", "Workshop", "Magic Lab", "Forge"}
	unlockAreaPool = []string{"Ancient Ruins", "Forgotten Caves", "Dark Forest", "Abandoned Mine", "Haunted Castle"}
	customRewards  = []string{"Special Training", "Rare Knowledge", "Guild Favor", "Magical Enhancement", "Ancient Secret"}

	guildResources = []string{"gold", "supplies", "magic_essence", "reputation", "rare_artifacts"}
)

// DifficultyPicker samples a difficulty for a generated mission. The default
// is WeightedDifficulty; boards can swap in another policy.
type DifficultyPicker func(rng *rand.Rand) Difficulty

// WeightedDifficulty samples difficulties with the standard distribution,
// skewed toward the easy end.
func WeightedDifficulty(rng *rand.Rand) Difficulty {
	weights := []int{20, 30, 25, 15, 7, 3}
	total := 0
	for _, w := range weights {
		total += w
	}
	v := rng.Intn(total)
	for i, w := range weights {
		if v < w {
			return AllDifficulties()[i]
		}
		v -= w
	}
	return Medium
}

// Generator produces randomized mission content scaled by difficulty.
type Generator struct {
	Rng  *rand.Rand
	Pick DifficultyPicker
}

// NewGenerator builds a generator around the given random source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{Rng: rng, Pick: WeightedDifficulty}
}

func difficultyScale(d Difficulty) int {
	switch d {
	case Trivial:
		return 1
	case Easy:
		return 2
	case Medium:
		return 3
	case Hard:
		return 5
	case VeryHard:
		return 8
	case Extreme:
		return 12
	}
	return 1
}

func (g *Generator) pick(pool []string) string {
	return pool[g.Rng.Intn(len(pool))]
}

// RandomObjective generates an objective whose kind and magnitude scale with
// difficulty.
func (g *Generator) RandomObjective(d Difficulty) Objective {
	scale := difficultyScale(d)
	switch g.Rng.Intn(10) {
	case 0:
		enemy := g.pick(enemyPool)
		count := scale * (2 + g.Rng.Intn(3))
		return NewObjective(ObjectiveKillEnemies, fmt.Sprintf("Kill %d %s", count, enemy), enemy, count)
	case 1:
		item := g.pick(itemPool)
		count := scale * (1 + g.Rng.Intn(3))
		return NewObjective(ObjectiveCollectItems, fmt.Sprintf("Collect %d %s", count, item), item, count)
	case 2:
		area := g.pick(areaPool)
		pct := 50 + scale*5
		if pct > 100 {
			pct = 100
		}
		return NewObjective(ObjectiveExploreArea, fmt.Sprintf("Explore %d%% of the %s", pct, area), area, pct)
	case 3:
		boss := g.pick(bossPool)
		return NewObjective(ObjectiveDefeatBoss, "Defeat "+boss, boss, 0)
	case 4:
		npc := g.pick(npcPool)
		return NewObjective(ObjectiveEscortNPC, "Escort the "+npc+" to safety", npc, 0)
	case 5:
		artifact := g.pick(artifactPool)
		return NewObjective(ObjectiveFindArtifact, "Find the "+artifact, artifact, 0)
	case 6:
		waves := scale * (1 + g.Rng.Intn(2))
		return NewObjective(ObjectiveSurviveWaves, fmt.Sprintf("Survive %d waves of enemies", waves), "", waves)
	case 7:
		place := g.pick(placePool)
		return NewObjective(ObjectiveReachPlace, "Reach the "+place, place, 0)
	case 8:
		return NewObjective(ObjectiveClearDungeon, "Clear the entire dungeon", "", 0)
	default:
		return NewObjective(ObjectiveCustom, g.pick(customPool), "", 0)
	}
}

// RandomReward generates a reward scaled by the difficulty's multiplier.
func (g *Generator) RandomReward(d Difficulty) Reward {
	mult := d.RewardMultiplier()
	switch g.Rng.Intn(7) {
	case 0:
		return Reward{
			Kind:     RewardGuildResource,
			Resource: g.pick(guildResources),
			Amount:   int(50*mult) + 10 + g.Rng.Intn(20),
		}
	case 1:
		count := int(mult/2) + 1
		items := make([]string, 0, count)
		for i := 0; i < count; i++ {
			items = append(items, g.pick(itemPool))
		}
		return Reward{Kind: RewardItems, Items: items}
	case 2:
		return Reward{Kind: RewardExperience, Amount: int(100*mult) + 20 + g.Rng.Intn(30)}
	case 3:
		return Reward{Kind: RewardReputation, Amount: int(10*mult) + 5 + g.Rng.Intn(10)}
	case 4:
		return Reward{Kind: RewardUnlockFacility, Facility: g.pick(facilityPool)}
	case 5:
		return Reward{Kind: RewardUnlockArea, Area: g.pick(unlockAreaPool)}
	default:
		return Reward{
			Kind:   RewardCustom,
			Note:   g.pick(customRewards),
			Amount: int(30*mult) + 10 + g.Rng.Intn(10),
		}
	}
}

// GenerateRandomMission mints an ID from the board and posts nothing; the
// returned mission is Available with 1-3 objectives, 1-2 rewards, and 1-3
// unique tags.
func (b *Board) GenerateRandomMission(g *Generator, guildID GuildID, now float64) Mission {
	pick := g.Pick
	if pick == nil {
		pick = WeightedDifficulty
	}
	difficulty := pick(g.Rng)

	name := g.pick(nameAdjectives) + " " + g.pick(nameNouns)
	description := g.pick(descriptionPool)

	m := New(b.NextID(), name, description, difficulty, guildID, now)

	for i, n := 0, 1+g.Rng.Intn(3); i < n; i++ {
		m.AddObjective(g.RandomObjective(difficulty))
	}
	for i, n := 0, 1+g.Rng.Intn(2); i < n; i++ {
		m.AddReward(g.RandomReward(difficulty))
	}

	// Tags drawn without replacement.
	want := 1 + g.Rng.Intn(3)
	for len(m.Tags) < want {
		m.AddTag(g.pick(tagVocabulary))
	}

	return m
}
