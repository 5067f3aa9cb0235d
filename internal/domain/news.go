package domain

import "time"

// CanonicalDateLayout is the day/month/year form every normalized date is rendered in.
const CanonicalDateLayout = "02/01/2006"

// NewsRecord is one article extracted from a search results page.
type NewsRecord struct {
	Row            int        `json:"row" bson:"row"`
	Title          string     `json:"title" bson:"title"`
	Media          string     `json:"media" bson:"media"`
	RawDate        string     `json:"raw_date" bson:"raw_date"`
	NormalizedDate *time.Time `json:"-" bson:"-"`
	Description    string     `json:"description" bson:"description"`
	Link           string     `json:"link" bson:"link"`
}

// NewsDate returns the canonical date, or "" when the record was never normalized.
func (r NewsRecord) NewsDate() string {
	if r.NormalizedDate == nil {
		return ""
	}
	return r.NormalizedDate.Format(CanonicalDateLayout)
}

// SearchWindow is one (query, date range) unit submitted for crawling.
type SearchWindow struct {
	Query string
	From  time.Time
	To    time.Time
}

// ResultTable holds the records of one window in page order, then in-page order.
type ResultTable struct {
	Window  SearchWindow
	Records []NewsRecord
	// Dropped counts records discarded because their date text could not be normalized.
	Dropped int
}

// Len returns the number of rows in the table.
func (t ResultTable) Len() int {
	return len(t.Records)
}
