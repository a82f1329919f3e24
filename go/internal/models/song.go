package models

// Song is one entry in the song catalog.
type Song struct {
	ID     string `json:"id"`
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// Label returns the display form used when revealing the answer.
func (s Song) Label() string {
	return s.Artist + " - " + s.Title
}
