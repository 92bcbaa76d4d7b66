package events

import "farm-husbandry/internal/domain/animals"

type Scope string

const (
	ScopeIndividual Scope = "INDIVIDUAL"
	ScopeGroup      Scope = "GROUP"
)

// Category es la etiqueta gruesa opcional del evento.
type Category string

const (
	CategoryMaintenance Category = "MAINTENANCE"
	CategoryVitamins    Category = "VITAMINS"
	CategoryFencing     Category = "FENCING"
	CategoryOther       Category = "OTHER"
)

// SubType es el sub-tipo específico de especie. Cada evento lleva exactamente
// uno, y debe pertenecer al set cerrado de su especie.
type SubType string

const (
	RabbitMaintenanceCages SubType = "MAINTENANCE_CAGES"
	RabbitMaintenanceTanks SubType = "MAINTENANCE_TANKS"
	RabbitVitaminsCorral   SubType = "VITAMINS_CORRAL"
	RabbitSlaughter        SubType = "SLAUGHTER"
	RabbitPregnancy        SubType = "PREGNANCY"
	RabbitOther            SubType = "OTHER"

	ChickenMaintenanceFence SubType = "MAINTENANCE_FENCE"
	ChickenVitaminsCorral   SubType = "VITAMINS_CORRAL"
	ChickenOther            SubType = "OTHER"

	CowVitamins  SubType = "VITAMINS"
	CowDeworming SubType = "DEWORMING"
	CowPregnancy SubType = "PREGNANCY"
	CowBirth     SubType = "BIRTH"
	CowDryOff    SubType = "DRY_OFF"
	CowOther     SubType = "OTHER"

	SheepVitamins  SubType = "VITAMINS"
	SheepDeworming SubType = "DEWORMING"
	SheepOther     SubType = "OTHER"
)

var subTypesBySpecies = map[animals.Species][]SubType{
	animals.SpeciesRabbit: {
		RabbitMaintenanceCages, RabbitMaintenanceTanks, RabbitVitaminsCorral,
		RabbitSlaughter, RabbitPregnancy, RabbitOther,
	},
	animals.SpeciesChicken: {
		ChickenMaintenanceFence, ChickenVitaminsCorral, ChickenOther,
	},
	animals.SpeciesCow: {
		CowVitamins, CowDeworming, CowPregnancy, CowBirth, CowDryOff, CowOther,
	},
	animals.SpeciesSheep: {
		SheepVitamins, SheepDeworming, SheepOther,
	},
}

func ValidSubType(species animals.Species, st SubType) bool {
	for _, v := range subTypesBySpecies[species] {
		if v == st {
			return true
		}
	}
	return false
}
