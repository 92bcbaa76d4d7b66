package alerts

type Status string

const (
	StatusPending Status = "PENDING"
	// StatusAcknowledged existe en el modelo pero ninguna transición lo
	// produce todavía (reservado).
	StatusAcknowledged Status = "ACKNOWLEDGED"
	StatusDone         Status = "DONE"
	StatusExpired      Status = "EXPIRED"
)

// Terminal indica que el estado no admite más transiciones.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusExpired
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Kind es el tipo cerrado de alerta. En persistencia sigue siendo texto libre
// por compatibilidad con registros históricos; el string crudo solo se acepta
// en esa frontera.
type Kind string

const (
	KindBreedingReady      Kind = "BREEDING_READY"
	KindSlaughterReminder  Kind = "SLAUGHTER_REMINDER"
	KindExpectedBirth      Kind = "EXPECTED_BIRTH"
	KindSeparateLitter     Kind = "SEPARATE_LITTER"
	KindDewormingReminder  Kind = "DEWORMING_REMINDER"
	KindBreedingReminder   Kind = "BREEDING_REMINDER"
	KindPostBirthCare      Kind = "POST_BIRTH_CARE"
	KindPregnancyDeworming Kind = "PREGNANCY_DEWORMING"
	KindStopMineralSalt    Kind = "STOP_MINERAL_SALT"
	KindPrepartumFood      Kind = "PREPARTUM_FOOD"
	KindDryOffUdder        Kind = "DRY_OFF_UDDER"
	KindRestPeriod         Kind = "REST_PERIOD"
)
