package registry

// Built-in content shipped under the "core" namespace. Plugins register
// additional entries under their own namespaces.
var (
	defaultSkills = []string{
		"farming", "foraging", "mining", "fishing", "excavation",
		"archery", "defense", "fighting", "endurance", "agility",
		"alchemy", "enchanting", "sorcery", "healing", "forging",
	}
	defaultStats = []string{
		"strength", "health", "regeneration", "luck", "wisdom", "toughness",
	}
	defaultTraits = []string{
		"attack_damage", "hp", "saturation_regen", "luck_bonus",
		"experience_bonus", "anvil_discount", "damage_reduction",
	}
)

// RegisterDefaults populates the registry with the built-in skills, stats and
// traits.
func (r *Registry) RegisterDefaults() {
	for _, key := range defaultSkills {
		r.RegisterSkill(Skill{ID: ID{Namespace: DefaultNamespace, Key: key}})
	}
	for _, key := range defaultStats {
		r.RegisterStat(Stat{ID: ID{Namespace: DefaultNamespace, Key: key}})
	}
	for _, key := range defaultTraits {
		r.RegisterTrait(Trait{ID: ID{Namespace: DefaultNamespace, Key: key}})
	}
}
