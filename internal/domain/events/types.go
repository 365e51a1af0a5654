package events

type ExceptionStatus string

const (
	StatusCancelled   ExceptionStatus = "cancelled"
	StatusRescheduled ExceptionStatus = "rescheduled"
)

func (s ExceptionStatus) Valid() bool {
	return s == StatusCancelled || s == StatusRescheduled
}

// Action es la operación pedida sobre una ocurrencia.
type Action string

const (
	ActionCancel     Action = "cancel"
	ActionReschedule Action = "reschedule"
	ActionRestore    Action = "restore"
)

// Outcome es el resultado observable de SetOccurrenceAction.
// OutcomeNothingToRestore no es un éxito: el handler lo informa como 404.
type Outcome string

const (
	OutcomeCancelled        Outcome = "cancelled"
	OutcomeRescheduled      Outcome = "rescheduled"
	OutcomeRestored         Outcome = "restored"
	OutcomeNothingToRestore Outcome = "nothing_to_restore"
)
