package domain

// NoteEvent describes a committed note mutation.
type NoteEvent struct {
	// User made the change. The project owner may differ for imports.
	User    *User
	Project *Project
	Note    *Note
	// Previous is the note as it was before an update. Nil otherwise.
	Previous *Note
}
