package model

import (
	"regexp"
	"time"
	"unicode/utf8"
)

const wordsPerMinute = 200

var markupTag = regexp.MustCompile(`<[^>]*>`)

type Note struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"`
	IsPublic     bool      `json:"is_public"`
	WordCount    int       `json:"word_count"`
	ReadingTime  int       `json:"reading_time"`
	LastAccessed time.Time `json:"last_accessed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WithContent returns a copy of n carrying content and the word count and
// reading time derived from it. It is the only way content should change.
func (n Note) WithContent(content string) Note {
	n.Content = content
	n.WordCount = CountWords(content)
	n.ReadingTime = ReadingMinutes(n.WordCount)
	return n
}

// CountWords returns the number of characters left once markup tags are removed.
func CountWords(content string) int {
	return utf8.RuneCountInString(markupTag.ReplaceAllString(content, ""))
}

func ReadingMinutes(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// NoteInput описывает создание заметки
type NoteInput struct {
	Title    string
	Content  string
	Tags     []string
	IsPublic bool
}

// NoteUpdate is a partial update: nil fields are left untouched.
type NoteUpdate struct {
	Title    *string
	Content  *string
	Tags     *[]string
	IsPublic *bool
}
