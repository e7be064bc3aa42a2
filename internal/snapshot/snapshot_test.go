package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

const eventsJSON = `[
  {"participantId":"p1","sessionPhase":"main","type":"page_leave","timestamp":"2025-03-10T14:00:10Z"},
  {"participantId":"p1","sessionPhase":"main","type":"page_return","timestamp":"2025-03-10T14:00:45Z"},
  {"participantId":"p2","sessionPhase":"main","type":"word_validation","timestamp":"2025-03-10T14:00:47Z","payload":{"word":"SANDWICH","valid":true}}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadEventsSingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "events.json", eventsJSON)

	events, err := LoadEvents(path)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "p1", events[0].ParticipantID)
	assert.Equal(t, "word_validation", events[2].Type)
	assert.NotEmpty(t, events[2].Payload)
}

func TestLoadEventsDirectoryMergesBatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "batch-002.json", `[{"participantId":"p2","sessionPhase":"main","type":"page_leave","timestamp":"2025-03-10T15:00:00Z"}]`)
	writeFile(t, dir, "batch-001.json", `[{"participantId":"p1","sessionPhase":"main","type":"page_leave","timestamp":"2025-03-10T14:00:00Z"}]`)

	events, err := LoadEvents(dir)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Files are read in lexical order.
	assert.Equal(t, "p1", events[0].ParticipantID)
	assert.Equal(t, "p2", events[1].ParticipantID)
}

func TestLoadEventsEmptyDirectory(t *testing.T) {
	_, err := LoadEvents(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no *.json files")
}

func TestLoadEventsMissingPath(t *testing.T) {
	_, err := LoadEvents(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadEventsRejectsMalformedJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "events.json", `{"not":"an array"`)

	_, err := LoadEvents(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation")
}

func TestLoadEventsRejectsWrongShape(t *testing.T) {
	// timestamp must be a string on the wire
	path := writeFile(t, t.TempDir(), "events.json",
		`[{"participantId":"p1","sessionPhase":"main","type":"page_leave","timestamp":42}]`)

	_, err := LoadEvents(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation")
}

func TestValidateEventsBytesTolerantOfMissingFields(t *testing.T) {
	// A record missing its timestamp is a data-quality condition for the
	// normalizer, not a malformed export.
	findings := ValidateEventsBytes([]byte(`[{"participantId":"p1","type":"page_leave"}]`))
	assert.Empty(t, findings)
}

func TestValidateEventsBytesRejectsNonArray(t *testing.T) {
	findings := ValidateEventsBytes([]byte(`{"participantId":"p1"}`))
	assert.NotEmpty(t, findings)
}

func TestLoadConfessionsEmptyPathIsFine(t *testing.T) {
	confessions, err := LoadConfessions("")
	require.NoError(t, err)
	assert.Nil(t, confessions)
}

func TestLoadConfessions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "confessions.json",
		`[{"participantId":"p1","confessedWords":["crate","traced"],"usedExternalResources":true}]`)

	confessions, err := LoadConfessions(path)
	require.NoError(t, err)
	require.Len(t, confessions, 1)
	assert.Equal(t, "p1", confessions[0].ParticipantID)
	assert.Equal(t, []string{"crate", "traced"}, confessions[0].ConfessedWords)
	assert.True(t, confessions[0].UsedExternalResources)
}

func TestLoadConfessionsRequiresParticipantID(t *testing.T) {
	path := writeFile(t, t.TempDir(), "confessions.json", `[{"confessedWords":["crate"]}]`)

	_, err := LoadConfessions(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation")
}

func TestGroupByParticipant(t *testing.T) {
	events := []models.RawEvent{
		{ParticipantID: "p1", Type: "a"},
		{ParticipantID: "p2", Type: "b"},
		{ParticipantID: "p1", Type: "c"},
		{ParticipantID: "", Type: "d"},
	}

	grouped := GroupByParticipant(events)
	require.Len(t, grouped, 3)
	assert.Len(t, grouped["p1"], 2)
	assert.Len(t, grouped["p2"], 1)
	// Events without an ID are kept, not dropped: the run reports them as a
	// data-quality row.
	assert.Len(t, grouped[""], 1)
	assert.Equal(t, "a", grouped["p1"][0].Type)
	assert.Equal(t, "c", grouped["p1"][1].Type)
}

func TestBuildInput(t *testing.T) {
	dir := t.TempDir()
	eventsPath := writeFile(t, dir, "events.json", eventsJSON)
	confessionsPath := writeFile(t, dir, "confessions.json",
		`[{"participantId":"p1","confessedWords":["old"]},
		  {"participantId":"p1","confessedWords":["new"]}]`)
	study := &models.Study{Name: "word-creation-study"}

	in, err := BuildInput(eventsPath, confessionsPath, study)
	require.NoError(t, err)

	assert.Len(t, in.Events, 2)
	assert.Len(t, in.Events["p1"], 2)
	assert.Same(t, study, in.Study)

	require.Contains(t, in.Confessions, "p1")
	assert.Equal(t, []string{"new"}, in.Confessions["p1"].ConfessedWords, "the later duplicate wins")
}
