package shortener

// Code represents a short URL code.
type Code string

// ShortMapping is the persisted code -> target record.
type ShortMapping struct {
	Code   Code
	Target string
}

// FirstCode is allocated when the table is empty.
const FirstCode Code = "0"
