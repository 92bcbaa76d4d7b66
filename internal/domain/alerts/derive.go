package alerts

import (
	"farm-husbandry/internal/domain/animals"
	"farm-husbandry/internal/domain/events"
)

// deriveKey identifica la combinación (tipo de alerta, especie) que al
// completarse deriva un evento de manejo.
type deriveKey struct {
	Kind    Kind
	Species animals.Species
}

// derivedEvents es la tabla inmutable de despacho usada por Complete. Los
// tipos de alerta nuevos se agregan acá, en un solo lugar.
var derivedEvents = map[deriveKey]events.SubType{
	{KindDewormingReminder, animals.SpeciesCow}:    events.CowDeworming,
	{KindDewormingReminder, animals.SpeciesSheep}:  events.SheepDeworming,
	{KindPregnancyDeworming, animals.SpeciesCow}:   events.CowDeworming,
	{KindPostBirthCare, animals.SpeciesCow}:        events.CowVitamins,
	{KindDryOffUdder, animals.SpeciesCow}:          events.CowDryOff,
	{KindExpectedBirth, animals.SpeciesCow}:        events.CowBirth,
	{KindSlaughterReminder, animals.SpeciesRabbit}: events.RabbitSlaughter,
}

// derivedSubType devuelve el sub-evento a registrar al completar la alerta,
// si la combinación está mapeada.
func derivedSubType(kind Kind, species animals.Species) (events.SubType, bool) {
	st, ok := derivedEvents[deriveKey{Kind: kind, Species: species}]
	return st, ok
}
