package events

import "time"

const (
	TypeNoteCreated   = "note.created"
	TypeNoteEnriched  = "note.enriched"
	TypeNoteFailed    = "note.failed"
	TypeNotesDeleted  = "notes.deleted"
	TypeNotesRestored = "notes.restored"
	TypeNotesPurged   = "notes.purged"
)

func NoteCreated(noteId uint, dispatchMode string) Event {
	return newEvent(TypeNoteCreated, map[string]interface{}{
		"note_id":       noteId,
		"dispatch_mode": dispatchMode,
	})
}

func NoteEnriched(noteId uint, category string, tags []string, fallback bool) Event {
	return newEvent(TypeNoteEnriched, map[string]interface{}{
		"note_id":  noteId,
		"category": category,
		"tags":     tags,
		"fallback": fallback,
	})
}

func NoteFailed(noteId uint, reason string) Event {
	return newEvent(TypeNoteFailed, map[string]interface{}{
		"note_id": noteId,
		"reason":  reason,
	})
}

// NotesChanged covers the bulk recycle-bin operations. ids may be empty for EmptyBin and
// retention sweeps.
func NotesChanged(eventType string, ids []uint, affected int64) Event {
	data := map[string]interface{}{"affected": affected}
	if len(ids) > 0 {
		data["note_ids"] = ids
	}
	return newEvent(eventType, data)
}

func newEvent(eventType string, data map[string]interface{}) Event {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}
