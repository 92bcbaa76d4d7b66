package animals

type Species string

const (
	SpeciesRabbit  Species = "RABBIT"
	SpeciesCow     Species = "COW"
	SpeciesSheep   Species = "SHEEP"
	SpeciesChicken Species = "CHICKEN"
	SpeciesOther   Species = "OTHER"
)

func ValidSpecies(s Species) bool {
	switch s {
	case SpeciesRabbit, SpeciesCow, SpeciesSheep, SpeciesChicken, SpeciesOther:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

type Origin string

const (
	OriginBorn      Origin = "BORN"
	OriginPurchased Origin = "PURCHASED"
)
