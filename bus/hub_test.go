package bus

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookmarks "github.com/anatolykoptev/go-bookmarks"
)

func TestHub_DeliversToActiveTab(t *testing.T) {
	h := NewHub()
	a, chA := h.Register(4)
	b, chB := h.Register(4)
	assert.Equal(t, b, h.Active(), "newest tab is active")

	require.True(t, h.Send(Message{Type: ActionImportUpdate, ImportedMessage: "one"}))
	require.True(t, h.Focus(a))
	require.True(t, h.Send(Message{Type: ActionImportUpdate, ImportedMessage: "two"}))

	assert.Equal(t, "one", (<-chB).ImportedMessage)
	assert.Equal(t, "two", (<-chA).ImportedMessage)
	assert.Empty(t, chA)
	assert.Empty(t, chB)
}

func TestHub_DropsWithoutListener(t *testing.T) {
	h := NewHub()
	assert.False(t, h.Send(Message{Type: ActionImportDone}))
	assert.EqualValues(t, 1, h.Dropped())

	id, _ := h.Register(1)
	h.Unregister(id)
	assert.Empty(t, h.Active())
	assert.False(t, h.Send(Message{Type: ActionImportDone}))
	assert.EqualValues(t, 2, h.Dropped())
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	h := NewHub()
	_, ch := h.Register(1)

	assert.True(t, h.Send(Message{ImportedMessage: "a"}))
	assert.False(t, h.Send(Message{ImportedMessage: "b"}))
	assert.EqualValues(t, 1, h.Dropped())
	assert.Equal(t, "a", (<-ch).ImportedMessage)
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	h := NewHub()
	id, ch := h.Register(1)
	h.Unregister(id)
	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, h.Tabs())
	assert.False(t, h.Focus(id))
	h.Unregister(id)
}

type recordingSender struct{ msgs []Message }

func (r *recordingSender) Send(m Message) bool {
	r.msgs = append(r.msgs, m)
	return true
}

func TestForward(t *testing.T) {
	events := make(chan bookmarks.Event, 3)
	events <- bookmarks.Event{Kind: bookmarks.EventProgress, Message: "Imported 1 tweets, so far..."}
	events <- bookmarks.Event{Kind: bookmarks.EventDone, Total: 1}
	events <- bookmarks.Event{Kind: bookmarks.EventError, Err: errors.New("Failed to fetch data: 500 - boom")}
	close(events)

	var s recordingSender
	Forward(events, &s)

	require.Len(t, s.msgs, 3)
	assert.Equal(t, Message{Type: ActionImportUpdate, ImportedMessage: "Imported 1 tweets, so far..."}, s.msgs[0])
	assert.Equal(t, Message{Type: ActionImportDone, TotalImported: 1}, s.msgs[1])
	assert.Equal(t, Message{Type: ActionImportError, Error: "Failed to fetch data: 500 - boom"}, s.msgs[2])
}

func TestMessage_ImportConfig(t *testing.T) {
	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "batch-import-all",
		"isFolderImport": true,
		"bookmarkCollectionId": "123",
		"selectedProject": {"id": "p", "name": "Reading", "containerTag": "sm_project_reading"}
	}`), &m))

	assert.Equal(t, ActionBatchImportAll, m.Kind())
	ic := m.ImportConfig()
	assert.True(t, ic.FolderImport)
	assert.Equal(t, "123", ic.FolderID)
	require.NotNil(t, ic.Project)
	assert.Equal(t, "sm_project_reading", ic.Project.ContainerTag)

	assert.Equal(t, ActionFetchProjects, Message{Action: ActionFetchProjects}.Kind())
}

func TestEventMessage_ZeroTotalOnWire(t *testing.T) {
	b, err := json.Marshal(EventMessage(bookmarks.Event{Kind: bookmarks.EventDone, Total: 0}))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.Equal(t, "import-done", fields["type"])
	require.Contains(t, fields, "totalImported")
	assert.EqualValues(t, 0, fields["totalImported"])
}
