package models

// ConfessionRecord is a participant's self-reported list of words they admit
// were created with external help. It is normally supplied as a separate
// input set by the ingestion service, but can also be recovered from a
// confession event in the stream when the external set lacks the participant.
type ConfessionRecord struct {
	ParticipantID         string   `json:"participantId"`
	ConfessedWords        []string `json:"confessedWords"`
	UsedExternalResources bool     `json:"usedExternalResources"`
}
